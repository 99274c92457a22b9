// Package fleet holds the shuttle records the live map consumes: the vehicle
// and route shapes served by the fleet API and the compact summaries derived
// from them.
package fleet

import (
	"fmt"
	"math/rand"
	"time"
)

// Route is one leg assigned to a vehicle.
type Route struct {
	ID          int     `json:"id,omitempty"`
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	DistanceKm  float64 `json:"distance_km"`
	EtaMinutes  int     `json:"estimated_time_minutes"`
	Order       int     `json:"order,omitempty"`
	Completed   bool    `json:"is_completed,omitempty"`
}

// Vehicle is a shuttle record as stored by the fleet backend.
type Vehicle struct {
	ID                int       `json:"id,omitempty"`
	VehicleType       string    `json:"vehicle_type"`
	Model             string    `json:"model"`
	Color             string    `json:"color"`
	DriverName        string    `json:"driver_name"`
	PlateNumber       string    `json:"plate_number"`
	CurrentRouteIndex int       `json:"current_route_index,omitempty"`
	Status            bool      `json:"status"`
	Routes            []Route   `json:"routes,omitempty"`
	NextRoute         *Route    `json:"next_route,omitempty"`
	CreatedAt         time.Time `json:"created_at,omitzero"`
	UpdatedAt         time.Time `json:"updated_at,omitzero"`
}

// Summary is the read-only view of a shuttle that the map draws.
type Summary struct {
	ID        int
	Color     Color
	ColorName string
	Active    bool
	NextRoute *Route
}

// Label returns the zero-padded three digit id shown on markers.
func Label(id int) string {
	return fmt.Sprintf("%03d", id)
}

// Summarize converts vehicles into summaries, preserving order.
func Summarize(vehicles []Vehicle) []Summary {
	out := make([]Summary, 0, len(vehicles))
	for _, v := range vehicles {
		s := Summary{
			ID:        v.ID,
			Color:     ParseColor(v.Color),
			ColorName: v.Color,
			Active:    v.Status,
		}
		if v.NextRoute != nil {
			r := *v.NextRoute
			s.NextRoute = &r
		}
		out = append(out, s)
	}
	return out
}

// Equal reports whether two summary lists describe the same fleet in the same order.
func Equal(a, b []Summary) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.ID != y.ID || x.Color != y.Color || x.ColorName != y.ColorName || x.Active != y.Active {
			return false
		}
		switch {
		case x.NextRoute == nil && y.NextRoute == nil:
		case x.NextRoute == nil || y.NextRoute == nil:
			return false
		case *x.NextRoute != *y.NextRoute:
			return false
		}
	}
	return true
}

// Demo returns the placeholder fleet shown when the backend cannot be reached:
// n shuttles numbered from 1, every other one active, with random colors.
func Demo(n int, rng *rand.Rand) []Summary {
	out := make([]Summary, 0, n)
	for i := 0; i < n; i++ {
		c := Colors[rng.Intn(len(Colors))]
		out = append(out, Summary{
			ID:        i + 1,
			Color:     c,
			ColorName: c.String(),
			Active:    i%2 == 0,
		})
	}
	return out
}
