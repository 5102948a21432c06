// Package hud keeps the short-lived text shown over the playfield.
package hud

import (
	"fmt"
	"strings"
	"time"

	"github.com/skirmish/skirmish/internal/core/ecs"
	"github.com/skirmish/skirmish/internal/core/event"
	"golang.org/x/text/width"
)

const maxLines = 4

type message struct {
	text string
	left time.Duration
}

// Board holds timed messages. Posts are staged and show up at the next
// Advance; expired messages drop out the Advance after their time runs out.
// Accessed only from the game loop goroutine.
type Board struct {
	msgs *ecs.MutationQueue[*message]
	cols int
}

func NewBoard(cols int) *Board {
	return &Board{msgs: ecs.NewMutationQueue[*message](16), cols: cols}
}

// Post stages text for ttl of simulated time.
func (b *Board) Post(text string, ttl time.Duration) {
	if ttl <= 0 || text == "" {
		return
	}
	b.msgs.Add(&message{text: text, left: ttl})
}

// Advance applies staged posts and ages every visible message by dt.
func (b *Board) Advance(dt time.Duration) {
	b.msgs.Apply()
	for _, m := range b.msgs.Items() {
		m.left -= dt
		if m.left <= 0 {
			b.msgs.Remove(m)
		}
	}
}

// Resize changes the column budget used by Lines.
func (b *Board) Resize(cols int) { b.cols = cols }

// Lines returns the newest visible messages, oldest first, each cut to the
// board width.
func (b *Board) Lines() []string {
	items := b.msgs.Items()
	if len(items) > maxLines {
		items = items[len(items)-maxLines:]
	}
	out := make([]string, len(items))
	for i, m := range items {
		out[i] = Truncate(m.text, b.cols)
	}
	return out
}

func (b *Board) Len() int { return b.msgs.Len() }

// Bind posts a message for the gameplay events players care about.
func Bind(bus *event.Bus, b *Board) {
	event.Subscribe(bus, func(e event.WaveStarted) {
		b.Post(fmt.Sprintf("Wave %d: %d incoming", e.Wave, e.Count), 3*time.Second)
	})
	event.Subscribe(bus, func(e event.EntityDamaged) {
		if e.Player {
			b.Post(fmt.Sprintf("Hit for %d, %d HP left", e.Amount, e.HP), 1500*time.Millisecond)
		}
	})
	event.Subscribe(bus, func(e event.EntityDied) {
		if e.Player {
			b.Post("You died", 5*time.Second)
		}
	})
}

// Cells returns how many terminal columns s occupies. East Asian wide and
// fullwidth runes take two.
func Cells(s string) int {
	n := 0
	for _, r := range s {
		n += runeCells(r)
	}
	return n
}

// Truncate cuts s to at most cols terminal columns, ending in "…" when cut.
func Truncate(s string, cols int) string {
	if cols <= 0 {
		return ""
	}
	if Cells(s) <= cols {
		return s
	}
	var sb strings.Builder
	used := 0
	for _, r := range s {
		w := runeCells(r)
		if used+w > cols-1 {
			break
		}
		sb.WriteRune(r)
		used += w
	}
	sb.WriteRune('…')
	return sb.String()
}

func runeCells(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	}
	return 1
}
