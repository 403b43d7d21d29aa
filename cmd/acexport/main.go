// acexport converts scene descriptions into AC3D (.ac) model files.
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/ac3d-export/internal/config"
	"github.com/Faultbox/ac3d-export/internal/gltfscene"
	"github.com/Faultbox/ac3d-export/internal/logger"
	"github.com/Faultbox/ac3d-export/internal/scenefile"
	"github.com/Faultbox/ac3d-export/pkg/ac3d"
	"github.com/Faultbox/ac3d-export/pkg/encoding"
	"github.com/Faultbox/ac3d-export/pkg/scene"
)

// ErrUnsupportedInput is returned for scene files with an unknown extension.
var ErrUnsupportedInput = errors.New("unsupported scene file")

// stdoutName selects standard output as the export target.
const stdoutName = "-"

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command := args[0]
	args = args[1:]

	switch command {
	case "export", "x":
		err = cmdExport(cfg, args)
	case "info":
		err = cmdInfo(args)
	case "config":
		err = cmdConfig(cfg, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`acexport - AC3D scene exporter

Usage:
  acexport [flags] <command> [arguments]

Commands:
  export <scene> [output.ac|-]   Export a .yaml, .yml, .gltf or .glb scene
  info <file.ac>                 Show model statistics
  config [path]                  Save the effective settings (default: user config dir)

Flags:
  -config <path>    Config file (default ./acexport.yaml)
  -debug            Enable debug logging
  -selection        Export selected nodes only
  -all-layers       Export nodes outside render layers
  -no-triangulate   Keep polygons as they are
  -double-sided     Write the two-sided surface flag
  -encoding <name>  Output encoding (utf-8, latin1, windows-1252, euc-kr)

Examples:
  acexport export workshop.yaml
  acexport -selection export tower.glb tower.ac
  acexport -encoding euc-kr export prontera.yaml -
  acexport info workshop.ac
  acexport -encoding euc-kr -double-sided config`)
}

func cmdExport(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: acexport export <scene> [output.ac|-]")
	}
	input := args[0]
	output := outputPath(input, args[1:])

	s, err := loadScene(input)
	if err != nil {
		return err
	}

	data, err := exportScene(cfg, s)
	if err != nil {
		return fmt.Errorf("exporting %s: %w", input, err)
	}

	if output == stdoutName {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	logger.Info("exported scene",
		zap.String("input", input),
		zap.String("output", output),
		zap.Int("bytes", len(data)))
	return nil
}

// outputPath returns the explicit output argument, or the input path
// with its extension replaced by .ac.
func outputPath(input string, rest []string) string {
	if len(rest) > 0 && rest[0] != "" {
		return rest[0]
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".ac"
}

// loadScene picks a scene source by file extension.
func loadScene(path string) (*scene.Scene, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return scenefile.Load(path)
	case ".gltf", ".glb":
		return gltfscene.Load(path, logger.Named("gltf"))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedInput, path)
	}
}

// exportScene renders s in the configured encoding. The whole file is
// built in memory so a failed export leaves no partial output behind.
func exportScene(cfg *config.Config, s *scene.Scene) ([]byte, error) {
	if cfg.Export.Triangulate {
		s.Triangulate()
	}

	exporter := &ac3d.Exporter{
		Filter: ac3d.Filter{
			LimitToRenderLayers: cfg.Export.LimitToRenderLayers,
			LimitToSelection:    cfg.Export.LimitToSelection,
		},
		DoubleSidedFlags: cfg.Export.DoubleSidedFlags,
		Logger:           logger.Named("ac3d"),
	}

	var buf bytes.Buffer
	w, err := encoding.NewWriter(&buf, cfg.Export.Encoding)
	if err != nil {
		return nil, err
	}
	if err := exporter.Write(w, s); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("flushing %s encoder: %w", cfg.Export.Encoding, err)
	}
	return buf.Bytes(), nil
}

// cmdConfig writes the merged defaults, config file and flags so they
// can be reused without repeating the flags.
func cmdConfig(cfg *config.Config, args []string) error {
	path, err := saveConfig(cfg, args)
	if err != nil {
		return err
	}
	fmt.Printf("Saved config: %s\n", path)
	return nil
}

func saveConfig(cfg *config.Config, args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		if err := cfg.SaveTo(args[0]); err != nil {
			return "", fmt.Errorf("saving config to %s: %w", args[0], err)
		}
		return args[0], nil
	}
	if err := cfg.Save(); err != nil {
		return "", fmt.Errorf("saving config to %s: %w", config.UserPath(), err)
	}
	return config.UserPath(), nil
}

func cmdInfo(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: acexport info <file.ac>")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	return printInfo(os.Stdout, args[0], f)
}

func printInfo(w io.Writer, name string, r io.Reader) error {
	file, err := ac3d.Parse(r)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}

	stats := file.Stats()
	fmt.Fprintf(w, "File:      %s\n", name)
	fmt.Fprintf(w, "Header:    %s\n", file.Header)
	fmt.Fprintf(w, "Scene:     %s\n", file.World.Name)
	fmt.Fprintf(w, "Materials: %d\n", stats.Materials)
	fmt.Fprintf(w, "Objects:   %d\n", stats.Objects)
	fmt.Fprintf(w, "Vertices:  %d\n", stats.Vertices)
	fmt.Fprintf(w, "Surfaces:  %d\n", stats.Surfaces)
	return nil
}
