// Package feed publishes the simulated fleet as a GTFS-realtime
// VehiclePositions feed, so standard transit tooling can consume the map.
package feed

import (
	"math"
	"strconv"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"github.com/babcock-shuttle/shuttlemap/internal/fleet"
	"github.com/babcock-shuttle/shuttlemap/internal/simulation"
)

// Version is the GTFS-realtime version written in feed headers.
const Version = "2.0"

const metersPerDegree = 111320.0

// Geo is the campus bounding box the canvas is stretched over.
type Geo struct {
	North float64 `mapstructure:"north" validate:"gte=-90,lte=90,gtfield=South"`
	South float64 `mapstructure:"south" validate:"gte=-90,lte=90"`
	East  float64 `mapstructure:"east" validate:"gte=-180,lte=180,gtfield=West"`
	West  float64 `mapstructure:"west" validate:"gte=-180,lte=180"`
}

// DefaultGeo covers the Babcock University campus, Ilishan-Remo.
func DefaultGeo() Geo {
	return Geo{North: 6.9000, South: 6.8880, East: 3.7260, West: 3.7080}
}

// Projection maps canvas coordinates onto Geo. The top-left corner of the
// canvas is the north-west corner of the box.
type Projection struct {
	Geo          Geo
	CanvasWidth  float64
	CanvasHeight float64
	TickInterval time.Duration
}

// NewProjection builds a projection for an engine configuration.
func NewProjection(geo Geo, cfg simulation.Config) Projection {
	return Projection{
		Geo:          geo,
		CanvasWidth:  cfg.CanvasWidth,
		CanvasHeight: cfg.CanvasHeight,
		TickInterval: cfg.TickInterval,
	}
}

// LatLon returns the coordinates of a canvas point.
func (p Projection) LatLon(x, y float64) (lat, lon float64) {
	lat = p.Geo.North - y/p.CanvasHeight*(p.Geo.North-p.Geo.South)
	lon = p.Geo.West + x/p.CanvasWidth*(p.Geo.East-p.Geo.West)
	return lat, lon
}

// metersPerUnit returns the ground length of one canvas unit along each axis.
func (p Projection) metersPerUnit() (mx, my float64) {
	midLat := (p.Geo.North + p.Geo.South) / 2
	mx = (p.Geo.East - p.Geo.West) * metersPerDegree * math.Cos(midLat*math.Pi/180) / p.CanvasWidth
	my = (p.Geo.North - p.Geo.South) * metersPerDegree / p.CanvasHeight
	return mx, my
}

// Motion converts a canvas velocity in units per tick into a compass bearing
// in degrees and a ground speed in meters per second.
func (p Projection) Motion(vx, vy float64) (bearing, speed float64) {
	mx, my := p.metersPerUnit()
	east := vx * mx
	north := -vy * my
	if east == 0 && north == 0 {
		return 0, 0
	}
	bearing = math.Atan2(east, north) * 180 / math.Pi
	if bearing < 0 {
		bearing += 360
	}
	if p.TickInterval <= 0 {
		return bearing, 0
	}
	return bearing, math.Hypot(east, north) / p.TickInterval.Seconds()
}

// Build returns a full-dataset feed with one vehicle position per marker.
// Shuttles with a next route carry it as the trip's route id.
func Build(markers []simulation.Marker, shuttles []fleet.Summary, proj Projection, now time.Time) *gtfsrtpb.FeedMessage {
	ts := uint64(now.Unix())

	routes := make(map[int]*fleet.Route, len(shuttles))
	for _, s := range shuttles {
		if s.NextRoute != nil {
			routes[s.ID] = s.NextRoute
		}
	}

	msg := &gtfsrtpb.FeedMessage{
		Header: &gtfsrtpb.FeedHeader{
			GtfsRealtimeVersion: proto.String(Version),
			Incrementality:      gtfsrtpb.FeedHeader_FULL_DATASET.Enum(),
			Timestamp:           proto.Uint64(ts),
		},
		Entity: make([]*gtfsrtpb.FeedEntity, 0, len(markers)),
	}

	for _, m := range markers {
		id := strconv.Itoa(m.ID)
		lat, lon := proj.LatLon(m.X, m.Y)
		bearing, speed := proj.Motion(m.VX, m.VY)

		vp := &gtfsrtpb.VehiclePosition{
			Vehicle: &gtfsrtpb.VehicleDescriptor{
				Id:    proto.String(id),
				Label: proto.String("Shuttle " + fleet.Label(m.ID)),
			},
			Position: &gtfsrtpb.Position{
				Latitude:  proto.Float32(float32(lat)),
				Longitude: proto.Float32(float32(lon)),
				Bearing:   proto.Float32(float32(bearing)),
				Speed:     proto.Float32(float32(speed)),
			},
			CurrentStatus: gtfsrtpb.VehiclePosition_IN_TRANSIT_TO.Enum(),
			Timestamp:     proto.Uint64(ts),
		}
		if r, ok := routes[m.ID]; ok && r.ID != 0 {
			vp.Trip = &gtfsrtpb.TripDescriptor{RouteId: proto.String(strconv.Itoa(r.ID))}
		}

		msg.Entity = append(msg.Entity, &gtfsrtpb.FeedEntity{
			Id:      proto.String("shuttle-" + id),
			Vehicle: vp,
		})
	}
	return msg
}
