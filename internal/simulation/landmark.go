package simulation

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Landmark is a named point of interest that markers steer toward.
type Landmark struct {
	Name string  `yaml:"name" validate:"required"`
	X    float64 `yaml:"x" validate:"gte=0"`
	Y    float64 `yaml:"y" validate:"gte=0"`
}

// landmarkFile is the on-disk shape of a landmark table.
type landmarkFile struct {
	Landmarks []Landmark `yaml:"landmarks" validate:"required,min=1,dive"`
}

// Babcock University campus landmarks, placed on the 800x540 campus map.
var campusLandmarks = []Landmark{
	{Name: "Bethel Splendor Hall", X: 420, Y: 100},
	{Name: "Winslow Hall", X: 360, Y: 140},
	{Name: "White Hall", X: 650, Y: 160},
	{Name: "Nyberg Hall", X: 600, Y: 200},
	{Name: "Crystal Hall", X: 720, Y: 260},
	{Name: "Platinum Hall", X: 620, Y: 260},
	{Name: "Busa House", X: 480, Y: 240},
	{Name: "Babcock Amphitheatre", X: 580, Y: 320},
	{Name: "Babcock University Registry", X: 480, Y: 420},
	{Name: "Biochemistry Research Lab", X: 580, Y: 480},
	{Name: "Babcock Guest House", X: 280, Y: 280},
	{Name: "Blessed Naira", X: 120, Y: 120},
	{Name: "Babcock University Teaching Hospital", X: 140, Y: 320},
	{Name: "Andrews Park", X: 380, Y: 480},
}

// CampusLandmarks returns a copy of the built-in landmark table.
func CampusLandmarks() []Landmark {
	out := make([]Landmark, len(campusLandmarks))
	copy(out, campusLandmarks)
	return out
}

// LoadLandmarks reads a landmark table from a YAML file and checks every
// point lies inside the boundary described by cfg, so each one stays
// reachable. An empty path returns the built-in campus table.
func LoadLandmarks(path string, cfg Config) ([]Landmark, error) {
	if path == "" {
		return CampusLandmarks(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read landmarks: %w", err)
	}

	var file landmarkFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse landmarks: %w", err)
	}
	if err := validator.New().Struct(file); err != nil {
		return nil, fmt.Errorf("invalid landmarks in %s: %w", path, err)
	}
	for _, lm := range file.Landmarks {
		if lm.X < cfg.BoundaryMin || lm.X > cfg.BoundaryMaxX || lm.Y < cfg.BoundaryMin || lm.Y > cfg.BoundaryMaxY {
			return nil, fmt.Errorf("landmark %q at (%.0f, %.0f) is outside the map boundary",
				lm.Name, lm.X, lm.Y)
		}
	}

	return file.Landmarks, nil
}
