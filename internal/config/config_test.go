package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/crabotin-lab/quadbench/internal/controller"
	"github.com/crabotin-lab/quadbench/internal/reference"
)

func TestLoadBuiltinPreset(t *testing.T) {
	sc, err := Load("", "hover-pid")
	if err != nil {
		t.Fatal(err)
	}
	if sc.Algo != controller.PID || sc.Pattern != reference.HOVER {
		t.Fatalf("unexpected preset contents: %+v", sc)
	}
}

func TestLoadUnknownPresetWithoutPathErrors(t *testing.T) {
	if _, err := Load("", "does-not-exist"); err == nil {
		t.Fatal("expected error for unknown builtin preset name")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenarios.toml")
	toml := `
[scenarios.custom-run]
algo = "SMC"
pattern = "CIRCLE"
wind_intensity = 2.5

[scenarios.custom-run.gains]
lambda_xy = 1.5
phi_xy = 0.1
`
	if err := os.WriteFile(path, []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}

	sc, err := Load(path, "custom-run")
	if err != nil {
		t.Fatal(err)
	}
	if sc.Algo != controller.SMC {
		t.Fatalf("expected SMC, got %v", sc.Algo)
	}
	if sc.Pattern != reference.CIRCLE {
		t.Fatalf("expected CIRCLE, got %v", sc.Pattern)
	}
	if sc.WindIntensity != 2.5 {
		t.Fatalf("expected wind intensity 2.5, got %v", sc.WindIntensity)
	}
	if sc.Gains["lambda_xy"] != 1.5 {
		t.Fatalf("expected lambda_xy=1.5, got %v", sc.Gains["lambda_xy"])
	}
}

func TestLoadFromFileRejectsUnknownAlgo(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenarios.toml")
	toml := `
[scenarios.bogus]
algo = "NOPE"
pattern = "HOVER"
`
	if err := os.WriteFile(path, []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, "bogus"); err == nil {
		t.Fatal("expected error for unknown algo name")
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml"), "hover-pid"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
