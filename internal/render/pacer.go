package render

import "time"

// Pacer runs game updates at a fixed interval on a host loop that can only
// tick a whole number of times per second. Intervals that divide one second
// get a matching host rate and one update per host tick; any other interval
// runs on a fallback host rate and accumulates host time exactly, so the
// long-run update rate is 1/interval.
type Pacer struct {
	tps      int
	interval time.Duration
	acc      time.Duration
}

// NewPacer returns a pacer for interval. fallbackTPS is the host rate used
// when interval does not divide one second.
func NewPacer(interval time.Duration, fallbackTPS int) *Pacer {
	if interval <= 0 {
		interval = time.Second / time.Duration(fallbackTPS)
	}
	p := &Pacer{interval: interval, tps: fallbackTPS}
	if interval <= time.Second && time.Second%interval == 0 {
		p.tps = int(time.Second / interval)
	}
	// the first host tick updates immediately
	p.acc = p.interval*time.Duration(p.tps) - time.Second
	return p
}

// TPS returns the host ticks per second the pacer expects.
func (p *Pacer) TPS() int {
	return p.tps
}

// Interval returns the update interval.
func (p *Pacer) Interval() time.Duration {
	return p.interval
}

// Step advances the pacer by one host tick and returns how many game
// updates are due.
func (p *Pacer) Step() int {
	// Host time is counted in units of 1/tps seconds scaled by tps, which
	// keeps the arithmetic exact.
	p.acc += time.Second
	due := p.interval * time.Duration(p.tps)
	n := int(p.acc / due)
	p.acc -= time.Duration(n) * due
	return n
}
