package feed

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"github.com/babcock-shuttle/shuttlemap/internal/fleet"
	"github.com/babcock-shuttle/shuttlemap/internal/simulation"
)

func testProjection() Projection {
	return NewProjection(DefaultGeo(), simulation.DefaultConfig())
}

func TestLatLonCorners(t *testing.T) {
	p := testProjection()
	geo := DefaultGeo()

	lat, lon := p.LatLon(0, 0)
	assert.InDelta(t, geo.North, lat, 1e-9)
	assert.InDelta(t, geo.West, lon, 1e-9)

	lat, lon = p.LatLon(800, 540)
	assert.InDelta(t, geo.South, lat, 1e-9)
	assert.InDelta(t, geo.East, lon, 1e-9)

	lat, lon = p.LatLon(400, 270)
	assert.InDelta(t, (geo.North+geo.South)/2, lat, 1e-9)
	assert.InDelta(t, (geo.East+geo.West)/2, lon, 1e-9)
}

func TestMotion(t *testing.T) {
	p := testProjection()

	tests := []struct {
		name    string
		vx, vy  float64
		bearing float64
	}{
		{"up is north", 0, -1, 0},
		{"right is east", 1, 0, 90},
		{"down is south", 0, 1, 180},
		{"left is west", -1, 0, 270},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bearing, speed := p.Motion(tt.vx, tt.vy)
			assert.InDelta(t, tt.bearing, bearing, 1e-6)
			assert.Greater(t, speed, 0.0)
		})
	}

	bearing, speed := p.Motion(0, 0)
	assert.Zero(t, bearing)
	assert.Zero(t, speed)

	// 1.2 units per tick northwards at 10 ticks per second
	_, speed = p.Motion(0, -1.2)
	want := 1.2 * (0.012 * metersPerDegree / 540) * 10
	assert.InDelta(t, want, speed, 1e-6)
}

func TestMotionFollowsTickInterval(t *testing.T) {
	cfg := simulation.DefaultConfig()
	perTick := 1.2 * (0.012 * metersPerDegree / 540)

	cfg.TickInterval = 2 * time.Second
	_, speed := NewProjection(DefaultGeo(), cfg).Motion(0, -1.2)
	assert.InDelta(t, perTick/2, speed, 1e-6)

	cfg.TickInterval = 300 * time.Millisecond
	_, speed = NewProjection(DefaultGeo(), cfg).Motion(0, -1.2)
	assert.InDelta(t, perTick/0.3, speed, 1e-6)
}

func TestBuild(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	markers := []simulation.Marker{
		{ID: 7, X: 400, Y: 270, VX: 1.2},
		{ID: 12, X: 0, Y: 0},
	}
	shuttles := []fleet.Summary{
		{ID: 7, NextRoute: &fleet.Route{ID: 4, Origin: "Library", Destination: "Chapel"}},
		{ID: 12},
	}

	msg := Build(markers, shuttles, testProjection(), now)

	require.NotNil(t, msg.GetHeader())
	assert.Equal(t, Version, msg.GetHeader().GetGtfsRealtimeVersion())
	assert.Equal(t, gtfsrtpb.FeedHeader_FULL_DATASET, msg.GetHeader().GetIncrementality())
	assert.Equal(t, uint64(now.Unix()), msg.GetHeader().GetTimestamp())
	require.Len(t, msg.GetEntity(), 2)

	first := msg.GetEntity()[0]
	assert.Equal(t, "shuttle-7", first.GetId())
	vp := first.GetVehicle()
	assert.Equal(t, "7", vp.GetVehicle().GetId())
	assert.Equal(t, "Shuttle 007", vp.GetVehicle().GetLabel())
	assert.InDelta(t, 6.894, vp.GetPosition().GetLatitude(), 1e-4)
	assert.InDelta(t, 3.717, vp.GetPosition().GetLongitude(), 1e-4)
	assert.InDelta(t, 90, vp.GetPosition().GetBearing(), 1e-3)
	assert.Equal(t, "4", vp.GetTrip().GetRouteId())
	assert.Equal(t, gtfsrtpb.VehiclePosition_IN_TRANSIT_TO, vp.GetCurrentStatus())

	second := msg.GetEntity()[1].GetVehicle()
	assert.Nil(t, second.GetTrip())
	assert.Zero(t, second.GetPosition().GetSpeed())
}

func TestBuildEmpty(t *testing.T) {
	msg := Build(nil, nil, testProjection(), time.Now())
	assert.Empty(t, msg.GetEntity())
	assert.NotNil(t, msg.GetHeader())
}

type staticSource struct {
	markers  []simulation.Marker
	shuttles []fleet.Summary
}

func (s staticSource) Snapshot() []simulation.Marker { return s.markers }
func (s staticSource) Shuttles() []fleet.Summary     { return s.shuttles }

func testSource() staticSource {
	return staticSource{
		markers:  []simulation.Marker{{ID: 1, X: 100, Y: 100}, {ID: 2, X: 200, Y: 200}},
		shuttles: []fleet.Summary{{ID: 1}, {ID: 2}},
	}
}

func TestHandlerServesProtobuf(t *testing.T) {
	h := NewHandler(testSource(), testProjection(), zerolog.Nop())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, Path, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-protobuf", rec.Header().Get("Content-Type"))

	var msg gtfsrtpb.FeedMessage
	require.NoError(t, proto.Unmarshal(rec.Body.Bytes(), &msg))
	assert.Len(t, msg.GetEntity(), 2)
	assert.Equal(t, "Shuttle 002", msg.GetEntity()[1].GetVehicle().GetVehicle().GetLabel())
}

func TestHandlerDebugText(t *testing.T) {
	h := NewHandler(testSource(), testProjection(), zerolog.Nop())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, Path+"?debug=1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rec.Body.String(), "gtfs_realtime_version")
	assert.Contains(t, rec.Body.String(), `"Shuttle 001"`)
}

func TestHandlerHealth(t *testing.T) {
	h := NewHandler(testSource(), testProjection(), zerolog.Nop())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	var resp healthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, healthResponse{Status: "ok", Vehicles: 2}, resp)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, ln, NewHandler(testSource(), testProjection(), zerolog.Nop()), zerolog.Nop())
	}()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}, Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + ln.Addr().String() + "/api/health")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), `"status":"ok"`)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServeBadAddress(t *testing.T) {
	err := Serve(context.Background(), "256.0.0.1:bad", http.NotFoundHandler(), zerolog.Nop())
	assert.Error(t, err)
}
