package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/Faultbox/ac3d-export/internal/config"
	"github.com/Faultbox/ac3d-export/pkg/ac3d"
	"github.com/Faultbox/ac3d-export/pkg/encoding"
)

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input string
		rest  []string
		want  string
	}{
		{"scene.yaml", nil, "scene.ac"},
		{"dir/tower.glb", nil, "dir/tower.ac"},
		{"noext", nil, "noext.ac"},
		{"scene.yaml", []string{"out.ac"}, "out.ac"},
		{"scene.yaml", []string{"-"}, "-"},
		{"scene.yaml", []string{""}, "scene.ac"},
	}

	for _, tt := range tests {
		if got := outputPath(tt.input, tt.rest); got != tt.want {
			t.Errorf("outputPath(%q, %v) = %q, want %q", tt.input, tt.rest, got, tt.want)
		}
	}
}

func TestLoadSceneUnsupported(t *testing.T) {
	_, err := loadScene("scene.obj")
	if !errors.Is(err, ErrUnsupportedInput) {
		t.Errorf("loadScene(.obj) error = %v, want ErrUnsupportedInput", err)
	}
}

func TestExportScene(t *testing.T) {
	s, err := loadScene("testdata/bench.yaml")
	if err != nil {
		t.Fatalf("loadScene() error = %v", err)
	}

	data, err := exportScene(config.Default(), s)
	if err != nil {
		t.Fatalf("exportScene() error = %v", err)
	}

	f, err := ac3d.Parse(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if f.World.Name != "작업장" {
		t.Errorf("world name = %q, want 작업장", f.World.Name)
	}

	stats := f.Stats()
	if stats.Objects != 2 {
		t.Errorf("Objects = %d, want 2", stats.Objects)
	}
	// The quad is fan-triangulated before export.
	if stats.Surfaces != 2 {
		t.Errorf("Surfaces = %d, want 2", stats.Surfaces)
	}
	if stats.Materials != 2 {
		t.Errorf("Materials = %d, want 2 (default plus Oak)", stats.Materials)
	}
}

func TestExportSceneOptions(t *testing.T) {
	s, err := loadScene("testdata/bench.yaml")
	if err != nil {
		t.Fatalf("loadScene() error = %v", err)
	}

	cfg := config.Default()
	cfg.Export.LimitToSelection = true
	cfg.Export.Triangulate = false
	cfg.Export.Encoding = "euc-kr"

	data, err := exportScene(cfg, s)
	if err != nil {
		t.Fatalf("exportScene() error = %v", err)
	}

	name, err := encoding.EncodeString(`name "작업장"`, "euc-kr")
	if err != nil {
		t.Fatalf("EncodeString() error = %v", err)
	}
	if !bytes.Contains(data, name) {
		t.Error("output does not contain the EUC-KR encoded scene name")
	}
	if !bytes.Contains(data, []byte("kids 1\n")) {
		t.Error("selection filter should leave a single root")
	}
	if !bytes.Contains(data, []byte("refs 4\n")) {
		t.Error("quad should be kept when triangulation is off")
	}
}

func TestExportSceneUnknownEncoding(t *testing.T) {
	s, err := loadScene("testdata/bench.yaml")
	if err != nil {
		t.Fatalf("loadScene() error = %v", err)
	}

	cfg := config.Default()
	cfg.Export.Encoding = "klingon"
	if _, err := exportScene(cfg, s); !errors.Is(err, encoding.ErrUnknownEncoding) {
		t.Errorf("exportScene() error = %v, want ErrUnknownEncoding", err)
	}
}

func TestPrintInfo(t *testing.T) {
	s, err := loadScene("testdata/bench.yaml")
	if err != nil {
		t.Fatalf("loadScene() error = %v", err)
	}
	data, err := exportScene(config.Default(), s)
	if err != nil {
		t.Fatalf("exportScene() error = %v", err)
	}

	var out strings.Builder
	if err := printInfo(&out, "bench.ac", bytes.NewReader(data)); err != nil {
		t.Fatalf("printInfo() error = %v", err)
	}
	for _, want := range []string{"File:      bench.ac", "Objects:   2", "Vertices:  4", "Surfaces:  2"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("info output missing %q:\n%s", want, out.String())
		}
	}
}

func TestPrintInfoInvalid(t *testing.T) {
	err := printInfo(&strings.Builder{}, "bad.ac", strings.NewReader("not a model\n"))
	if !errors.Is(err, ac3d.ErrInvalidHeader) {
		t.Errorf("printInfo() error = %v, want ErrInvalidHeader", err)
	}
}

func TestSaveConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Export.DoubleSidedFlags = true

	path := filepath.Join(t.TempDir(), "acexport.yaml")
	got, err := saveConfig(cfg, []string{path})
	if err != nil {
		t.Fatalf("saveConfig() error = %v", err)
	}
	if got != path {
		t.Errorf("saveConfig() path = %q, want %q", got, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading saved config: %v", err)
	}
	if !strings.Contains(string(data), "double_sided_flags: true") {
		t.Errorf("saved config missing double_sided_flags:\n%s", data)
	}
}

func TestSaveConfigUserDir(t *testing.T) {
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		t.Skip("config dir ignores XDG_CONFIG_HOME on this OS")
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	got, err := saveConfig(config.Default(), nil)
	if err != nil {
		t.Fatalf("saveConfig() error = %v", err)
	}
	if want := filepath.Join(dir, "acexport", config.FileName); got != want {
		t.Errorf("saveConfig() path = %q, want %q", got, want)
	}
	if _, err := os.Stat(got); err != nil {
		t.Errorf("config not written: %v", err)
	}
}
