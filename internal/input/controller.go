// Package input turns terminal key events into game actions.
//
// Terminals report key presses and auto-repeat but never releases, so an
// action stays held for a short window after its last press. The polling
// goroutine writes under a mutex; the game loop latches one snapshot per
// tick and reads only that.
package input

import (
	"context"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
)

type Action uint8

const (
	ActionUp Action = iota
	ActionDown
	ActionLeft
	ActionRight
	ActionFire
	actionCount
)

var actionNames = [actionCount]string{"up", "down", "left", "right", "fire"}

func (a Action) String() string {
	if a < actionCount {
		return actionNames[a]
	}
	return "unknown"
}

// Actions is the read side used by systems.
type Actions interface {
	Active(Action) bool
}

// DefaultHold covers the gap between the first press and terminal auto-repeat.
const DefaultHold = 250 * time.Millisecond

type Controller struct {
	mu    sync.Mutex
	until [actionCount]time.Time
	hold  time.Duration
	now   func() time.Time

	runes map[rune]Action
	keys  map[tcell.Key]Action

	quit     chan struct{}
	quitOnce sync.Once

	latched [actionCount]bool // game loop only
}

func NewController(hold time.Duration) *Controller {
	if hold <= 0 {
		hold = DefaultHold
	}
	return &Controller{
		hold: hold,
		now:  time.Now,
		runes: map[rune]Action{
			'w': ActionUp, 'k': ActionUp,
			's': ActionDown, 'j': ActionDown,
			'a': ActionLeft, 'h': ActionLeft,
			'd': ActionRight, 'l': ActionRight,
			' ': ActionFire,
		},
		keys: map[tcell.Key]Action{
			tcell.KeyUp:    ActionUp,
			tcell.KeyDown:  ActionDown,
			tcell.KeyLeft:  ActionLeft,
			tcell.KeyRight: ActionRight,
			tcell.KeyEnter: ActionFire,
		},
		quit: make(chan struct{}),
	}
}

// HandleEvent records one terminal event. Safe from any goroutine.
func (c *Controller) HandleEvent(ev tcell.Event) {
	key, ok := ev.(*tcell.EventKey)
	if !ok {
		return
	}
	switch key.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		c.RequestQuit()
		return
	case tcell.KeyRune:
		if key.Rune() == 'q' {
			c.RequestQuit()
			return
		}
		if a, ok := c.runes[key.Rune()]; ok {
			c.Press(a)
		}
		return
	}
	if a, ok := c.keys[key.Key()]; ok {
		c.Press(a)
	}
}

// Press holds a for the hold window starting now.
func (c *Controller) Press(a Action) {
	if a >= actionCount {
		return
	}
	c.mu.Lock()
	c.until[a] = c.now().Add(c.hold)
	c.mu.Unlock()
}

// Latch snapshots the held actions for the coming tick.
func (c *Controller) Latch() {
	c.mu.Lock()
	now := c.now()
	for a := range c.until {
		c.latched[a] = now.Before(c.until[a])
	}
	c.mu.Unlock()
}

// Active reports whether a was held at the last Latch.
func (c *Controller) Active(a Action) bool {
	return a < actionCount && c.latched[a]
}

func (c *Controller) RequestQuit() {
	c.quitOnce.Do(func() { close(c.quit) })
}

// Quit is closed once the player asks to leave.
func (c *Controller) Quit() <-chan struct{} { return c.quit }

// Pump feeds screen events into the controller until the screen is
// finalized or ctx is done. Call screen.Fini to unblock it.
func (c *Controller) Pump(ctx context.Context, screen tcell.Screen) error {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
		c.HandleEvent(ev)
	}
}
