// Package render draws the world onto a terminal screen.
package render

import (
	"sort"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/skirmish/skirmish/internal/component"
	"github.com/skirmish/skirmish/internal/core/ecs"
	"github.com/skirmish/skirmish/internal/hud"
)

type drawable struct {
	x, y  int
	glyph rune
	style tcell.Style
	z     int
}

// Renderer reads the store and never mutates it. The top row holds the
// status line, HUD messages overlay the bottom rows, and the playfield is
// scaled into what is left.
type Renderer struct {
	screen tcell.Screen
	store  *ecs.Store
	board  *hud.Board
	bounds component.Rect
	status func() string

	styles  map[string]tcell.Style
	scratch []drawable
}

func New(screen tcell.Screen, store *ecs.Store, board *hud.Board, bounds component.Rect, status func() string) *Renderer {
	return &Renderer{
		screen: screen,
		store:  store,
		board:  board,
		bounds: bounds,
		status: status,
		styles: make(map[string]tcell.Style),
	}
}

// Draw renders one frame.
func (r *Renderer) Draw() {
	r.screen.Clear()
	w, h := r.screen.Size()
	if w <= 0 || h <= 1 {
		r.screen.Show()
		return
	}
	r.board.Resize(w)

	r.scratch = r.scratch[:0]
	for _, id := range r.store.QueryAny(component.KindSprite) {
		sp, _ := ecs.Get[*component.Sprite](r.store, id)
		tr, ok := ecs.Get[*component.Transform](r.store, id)
		if !ok {
			continue
		}
		x, y, ok := r.project(tr.Box().Center(), w, h-1)
		if !ok {
			continue
		}
		r.scratch = append(r.scratch, drawable{x: x, y: y + 1, glyph: sp.Glyph, style: r.style(sp.Color), z: sp.Z})
	}
	sort.SliceStable(r.scratch, func(i, j int) bool { return r.scratch[i].z < r.scratch[j].z })
	for _, d := range r.scratch {
		r.screen.SetContent(d.x, d.y, d.glyph, nil, d.style)
	}

	bar := tcell.StyleDefault.Reverse(true)
	for x := 0; x < w; x++ {
		r.screen.SetContent(x, 0, ' ', nil, bar)
	}
	if r.status != nil {
		r.text(0, 0, hud.Truncate(r.status(), w), bar)
	}
	lines := r.board.Lines()
	for i, line := range lines {
		r.text(0, h-len(lines)+i, line, tcell.StyleDefault.Bold(true))
	}
	r.screen.Show()
}

// project maps a world point into a cols×rows playfield.
func (r *Renderer) project(p mgl64.Vec2, cols, rows int) (x, y int, ok bool) {
	if !r.bounds.Contains(p) {
		return 0, 0, false
	}
	x = int((p[0] - r.bounds.Min[0]) / r.bounds.Width() * float64(cols))
	y = int((p[1] - r.bounds.Min[1]) / r.bounds.Height() * float64(rows))
	return min(x, cols-1), min(y, rows-1), true
}

func (r *Renderer) style(color string) tcell.Style {
	if s, ok := r.styles[color]; ok {
		return s
	}
	s := tcell.StyleDefault
	if color != "" {
		s = s.Foreground(tcell.GetColor(color))
	}
	r.styles[color] = s
	return s
}

func (r *Renderer) text(x, y int, s string, style tcell.Style) {
	for _, ch := range s {
		r.screen.SetContent(x, y, ch, nil, style)
		x += hud.Cells(string(ch))
	}
}
