package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func countUpdates(p *Pacer, hostTicks int) int {
	n := 0
	for i := 0; i < hostTicks; i++ {
		n += p.Step()
	}
	return n
}

func TestPacerDivisorIntervalMatchesHostRate(t *testing.T) {
	p := NewPacer(100*time.Millisecond, 60)
	assert.Equal(t, 10, p.TPS())
	for i := 0; i < 25; i++ {
		assert.Equal(t, 1, p.Step())
	}
}

func TestPacerKeepsNonDivisorIntervals(t *testing.T) {
	tests := []struct {
		interval time.Duration
		seconds  int
		want     int
	}{
		{300 * time.Millisecond, 3, 10},
		{700 * time.Millisecond, 7, 10},
		{2 * time.Second, 10, 5},
		{3 * time.Second, 9, 3},
	}
	for _, tt := range tests {
		t.Run(tt.interval.String(), func(t *testing.T) {
			p := NewPacer(tt.interval, 60)
			assert.Equal(t, 60, p.TPS())
			// the first update fires on the first host tick
			assert.Equal(t, tt.want, countUpdates(p, tt.seconds*60))
		})
	}
}

func TestPacerTwoSecondSpacing(t *testing.T) {
	p := NewPacer(2*time.Second, 60)
	assert.Equal(t, 1, p.Step())
	assert.Equal(t, 0, countUpdates(p, 119))
	assert.Equal(t, 1, p.Step())
}

func TestPacerShortIntervalRunsSeveralUpdatesPerTick(t *testing.T) {
	p := NewPacer(7*time.Millisecond, 60)
	// 10s of host ticks cover 1428.6 intervals of 7ms
	got := countUpdates(p, 600)
	assert.InDelta(t, 1428, got, 2)
}
