// Package ac3d writes scene snapshots as AC3D (.ac) text models and reads
// the produced subset back.
//
// AC3D is a flat, line-oriented keyword format. Object nesting is encoded
// by a "kids <n>" record: exactly n object blocks follow before control
// returns to the parent.
package ac3d

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Header is the first line of every file written by this package.
const Header = "AC3Db"

// DefaultMaterialLine is always emitted first and owns material index 0.
const DefaultMaterialLine = `MATERIAL "DefaultWhite" rgb 1.0 1.0 1.0 amb 0.2 0.2 0.2 emis 0.0 0.0 0.0 spec 0.2 0.2 0.2 shi 0.6 trans 0`

// Export and parse errors.
var (
	ErrInvalidSceneData = errors.New("invalid scene data")
	ErrInvalidHeader    = errors.New("invalid AC3D header: expected 'AC3D'")
	ErrTruncatedData    = errors.New("truncated AC3D data")
	ErrMalformedRecord  = errors.New("malformed AC3D record")
)

// formatFixed prints v with exactly 10 fractional digits. Values that
// round to zero print without a sign.
func formatFixed(v float64) string {
	s := strconv.FormatFloat(v, 'f', 10, 64)
	if strings.HasPrefix(s, "-") && strings.Trim(s[1:], "0.") == "" {
		return s[1:]
	}
	return s
}

// formatChannel rounds v to 4 decimals and prints the shortest
// representation that keeps a fractional part ("1.0", "0.8", "0.1235").
func formatChannel(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 4, 64), 64)
	if math.Abs(r) >= 1e16 {
		return strconv.FormatFloat(r, 'e', -1, 64)
	}
	s := strconv.FormatFloat(r, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// quoteName returns name wrapped in double quotes. Embedded quotes become
// single quotes and line breaks become spaces.
func quoteName(name string) string {
	name = strings.NewReplacer(`"`, `'`, "\r\n", " ", "\n", " ", "\r", " ").Replace(name)
	return `"` + name + `"`
}
