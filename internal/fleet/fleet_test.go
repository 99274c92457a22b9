package fleet

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		name string
		want Color
		hex  string
	}{
		{"White", ColorWhite, "#F5F5F5"},
		{"Blue", ColorBlue, "#3B82F6"},
		{"green", ColorGreen, "#10B981"},
		{"Yellow", ColorYellow, "#FBBF24"},
		{"Black", ColorBlack, "#1F2937"},
		{" Silver ", ColorSilver, "#D1D5DB"},
		{"RED", ColorRed, "#EF4444"},
		{"Orange", ColorOrange, "#F97316"},
		{"Mauve", ColorOther, "#999999"},
		{"", ColorOther, "#999999"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ParseColor(tt.name)
			assert.Equal(t, tt.want, c)
			assert.Equal(t, tt.hex, c.Hex())
		})
	}
}

func TestColorsRoundTripByName(t *testing.T) {
	for _, c := range Colors {
		assert.Equal(t, c, ParseColor(c.String()))
	}
	assert.Equal(t, "Other", ColorOther.String())
}

func TestSummarize(t *testing.T) {
	next := &Route{ID: 3, Origin: "Winslow Hall", Destination: "White Hall", DistanceKm: 0.8, EtaMinutes: 4}
	got := Summarize([]Vehicle{
		{ID: 7, Color: "Blue", Status: true, NextRoute: next, DriverName: "Ada"},
		{ID: 2, Color: "Mauve"},
	})

	want := []Summary{
		{ID: 7, Color: ColorBlue, ColorName: "Blue", Active: true, NextRoute: &Route{ID: 3, Origin: "Winslow Hall", Destination: "White Hall", DistanceKm: 0.8, EtaMinutes: 4}},
		{ID: 2, Color: ColorOther, ColorName: "Mauve"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Summarize mismatch (-want +got):\n%s", diff)
	}

	next.Destination = "changed"
	assert.Equal(t, "White Hall", got[0].NextRoute.Destination, "summary must not alias the vehicle's route")
}

func TestEqual(t *testing.T) {
	a := []Summary{{ID: 1, Color: ColorRed, NextRoute: &Route{Origin: "A", Destination: "B"}}}
	b := []Summary{{ID: 1, Color: ColorRed, NextRoute: &Route{Origin: "A", Destination: "B"}}}
	assert.True(t, Equal(a, b))

	b[0].NextRoute.Destination = "C"
	assert.False(t, Equal(a, b))

	b[0].NextRoute = nil
	assert.False(t, Equal(a, b))

	assert.False(t, Equal(a, nil))
	assert.True(t, Equal(nil, []Summary{}))
}

func TestDemo(t *testing.T) {
	list := Demo(DemoFleetSize, rand.New(rand.NewSource(1)))
	require.Len(t, list, DemoFleetSize)
	for i, s := range list {
		assert.Equal(t, i+1, s.ID)
		assert.Equal(t, i%2 == 0, s.Active)
		assert.NotEqual(t, ColorOther, s.Color)
		assert.Nil(t, s.NextRoute)
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "007", Label(7))
	assert.Equal(t, "123", Label(123))
	assert.Equal(t, "1234", Label(1234))
}

type stubSource struct {
	calls   int
	results [][]Vehicle
	err     error
}

func (s *stubSource) ListVehicles(ctx context.Context) ([]Vehicle, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	i := s.calls - 1
	if i >= len(s.results) {
		i = len(s.results) - 1
	}
	return s.results[i], nil
}

func TestPoller_FetchOnce(t *testing.T) {
	src := &stubSource{results: [][]Vehicle{{{ID: 1, Color: "Red", Status: true}}}}
	var got [][]Summary
	p := &Poller{Source: src, Sink: func(s []Summary) { got = append(got, s) }, Logger: zerolog.Nop()}

	p.Run(context.Background())

	assert.Equal(t, 1, src.calls)
	require.Len(t, got, 1)
	assert.Equal(t, ColorRed, got[0][0].Color)
}

func TestPoller_DemoOnFirstFailure(t *testing.T) {
	src := &stubSource{err: errors.New("connection refused")}
	var got [][]Summary
	p := &Poller{
		Source:        src,
		Sink:          func(s []Summary) { got = append(got, s) },
		DemoOnFailure: true,
		Rand:          rand.New(rand.NewSource(3)),
		Logger:        zerolog.Nop(),
	}

	p.Run(context.Background())
	require.Len(t, got, 1)
	assert.Len(t, got[0], DemoFleetSize)

	// later failures keep whatever is on screen
	p.poll(context.Background())
	assert.Len(t, got, 1)
}

func TestPoller_NoDemoWhenDisabled(t *testing.T) {
	src := &stubSource{err: errors.New("boom")}
	called := false
	p := &Poller{Source: src, Sink: func([]Summary) { called = true }, Logger: zerolog.Nop()}
	p.Run(context.Background())
	assert.False(t, called)
}

func TestPoller_PublishesOnlyChanges(t *testing.T) {
	same := []Vehicle{{ID: 1, Color: "Red"}}
	src := &stubSource{results: [][]Vehicle{same, same, {{ID: 1, Color: "Red"}, {ID: 2, Color: "Blue"}}}}
	var got [][]Summary
	p := &Poller{Source: src, Sink: func(s []Summary) { got = append(got, s) }, Logger: zerolog.Nop()}

	ctx := context.Background()
	p.poll(ctx)
	p.poll(ctx)
	p.poll(ctx)

	require.Len(t, got, 2)
	assert.Len(t, got[1], 2)
}

func TestPoller_StopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := &stubSource{results: [][]Vehicle{{{ID: 1}}}}
	p := &Poller{Source: src, Interval: time.Millisecond, Logger: zerolog.Nop()}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancel")
	}
}
