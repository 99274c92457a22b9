package simulation

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestConfigValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero speed", func(c *Config) { c.Speed = 0 }},
		{"inverted boundary", func(c *Config) { c.BoundaryMaxX = 10 }},
		{"boundary past canvas", func(c *Config) { c.BoundaryMaxY = 600 }},
		{"zero tick", func(c *Config) { c.TickInterval = 0 }},
		{"spawn margin off canvas", func(c *Config) { c.SpawnMargin = 900 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestLongTickIntervalIsValid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TickInterval = 2 * time.Second
	if err := cfg.Validate(); err != nil {
		t.Errorf("2s tick interval should validate: %v", err)
	}
	cfg.TickInterval = 300 * time.Millisecond
	if err := cfg.Validate(); err != nil {
		t.Errorf("300ms tick interval should validate: %v", err)
	}
}

func TestLoadLandmarksDefault(t *testing.T) {
	lms, err := LoadLandmarks("", DefaultConfig())
	if err != nil {
		t.Fatalf("LoadLandmarks: %v", err)
	}
	if len(lms) != 14 {
		t.Fatalf("Expected 14 campus landmarks, got %d", len(lms))
	}
	if lms[0].Name != "Bethel Splendor Hall" || lms[0].X != 420 || lms[0].Y != 100 {
		t.Errorf("Unexpected first landmark %+v", lms[0])
	}

	lms[0].Name = "changed"
	if CampusLandmarks()[0].Name != "Bethel Splendor Hall" {
		t.Error("CampusLandmarks must return a copy")
	}
}

func TestLoadLandmarksFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "landmarks.yml")
	data := `landmarks:
  - name: Library
    x: 100
    y: 200
  - name: Gate
    x: 700
    y: 500
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	lms, err := LoadLandmarks(path, DefaultConfig())
	if err != nil {
		t.Fatalf("LoadLandmarks: %v", err)
	}
	if len(lms) != 2 {
		t.Fatalf("Expected 2 landmarks, got %d", len(lms))
	}
	if lms[1].Name != "Gate" || lms[1].X != 700 || lms[1].Y != 500 {
		t.Errorf("Unexpected landmark %+v", lms[1])
	}
}

func TestLoadLandmarksInvalid(t *testing.T) {
	tests := map[string]string{
		"empty":          "landmarks: []\n",
		"missing name":   "landmarks:\n  - x: 100\n    y: 100\n",
		"outside canvas": "landmarks:\n  - name: Far\n    x: 790\n    y: 100\n",
		"negative":       "landmarks:\n  - name: Neg\n    x: -5\n    y: 100\n",
		"malformed":      "landmarks: [\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "landmarks.yml")
			if err := os.WriteFile(path, []byte(data), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadLandmarks(path, DefaultConfig()); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestLoadLandmarksMissingFile(t *testing.T) {
	if _, err := LoadLandmarks(filepath.Join(t.TempDir(), "nope.yml"), DefaultConfig()); err == nil {
		t.Error("Expected error for missing file")
	}
}
