package term

import (
	"context"
	"errors"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/babcock-shuttle/shuttlemap/internal/render"
)

const defaultInterval = 100 * time.Millisecond

// FrameHandler is called after each frame is shown. n counts from 1.
type FrameHandler func(screen tcell.Screen, n int) error

// TermEngine drives a game on a tcell screen.
type TermEngine struct {
	screen        tcell.Screen
	width, height int
	title         string
	interval      time.Duration
	onFrame       FrameHandler
}

// NewEngine creates an engine on an initialized screen. The engine finalizes
// the screen when RunGame returns.
func NewEngine(screen tcell.Screen) *TermEngine {
	return &TermEngine{screen: screen, width: 800, height: 540, interval: defaultInterval}
}

// Open creates and initializes the terminal screen.
func Open() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return screen, nil
}

// SetWindowSize sets the logical canvas size handed to Layout.
func (e *TermEngine) SetWindowSize(width, height int) {
	e.width = width
	e.height = height
}

// SetWindowTitle sets the terminal title where supported.
func (e *TermEngine) SetWindowTitle(title string) {
	e.title = title
}

// Title returns the title set by SetWindowTitle.
func (e *TermEngine) Title() string {
	return e.title
}

// SetTickInterval sets the time between updates.
func (e *TermEngine) SetTickInterval(d time.Duration) {
	if d <= 0 {
		d = defaultInterval
	}
	e.interval = d
}

// TickInterval returns the time between updates.
func (e *TermEngine) TickInterval() time.Duration {
	return e.interval
}

// SetFrameHandler installs a callback invoked after each frame is shown.
func (e *TermEngine) SetFrameHandler(fn FrameHandler) {
	e.onFrame = fn
}

// RunGame runs the loop until ctx is done, the user quits with q, Esc or
// Ctrl-C, or the game terminates.
func (e *TermEngine) RunGame(ctx context.Context, game render.Game) error {
	if e.title != "" {
		e.screen.SetTitle(e.title)
	}

	events := make(chan tcell.Event, 16)
	stop := make(chan struct{})
	pollDone := make(chan struct{})
	go func() {
		defer close(pollDone)
		for {
			ev := e.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-stop:
				return
			}
		}
	}()
	defer func() {
		close(stop)
		e.screen.Fini()
		<-pollDone
	}()

	w, h := game.Layout(e.width, e.height)
	canvas := NewImage(w, h)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for n := 1; ; n++ {
		if err := game.Update(); err != nil {
			if errors.Is(err, render.ErrTerminated) {
				return nil
			}
			return err
		}
		game.Draw(canvas)
		canvas.Flush(e.screen)

		if e.onFrame != nil {
			if err := e.onFrame(e.screen, n); err != nil {
				if errors.Is(err, render.ErrTerminated) {
					return nil
				}
				return err
			}
		}

	wait:
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev := <-events:
				switch ev := ev.(type) {
				case *tcell.EventKey:
					if isQuit(ev) {
						return nil
					}
				case *tcell.EventResize:
					e.screen.Sync()
				}
			case <-ticker.C:
				break wait
			}
		}
	}
}

func isQuit(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q' || ev.Rune() == 'Q'
	}
	return false
}
