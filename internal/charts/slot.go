package charts

import (
	"sync"
	"sync/atomic"
	"time"
)

// Tooltip — подписи для одной точки (index mode: по одной строке на серию).
type Tooltip struct {
	X     string   `json:"x"`
	Lines []string `json:"lines"`
}

// Chart is a rendered chart bound to one canvas. Fields are not modified after
// the chart is installed in a Slot.
type Chart struct {
	Canvas      string
	ProductID   string
	ContentType string
	Image       []byte
	Tooltips    []Tooltip
	RenderedAt  time.Time

	destroyed atomic.Bool
	onDestroy func()
}

// Destroy releases the chart; calling it twice is a no-op.
func (c *Chart) Destroy() {
	if c == nil || !c.destroyed.CompareAndSwap(false, true) {
		return
	}
	if c.onDestroy != nil {
		c.onDestroy()
	}
}

func (c *Chart) Destroyed() bool { return c.destroyed.Load() }

// Slot owns at most one live chart for a canvas.
type Slot struct {
	canvas string

	mu      sync.Mutex
	current *Chart
}

func NewSlot(canvas string) *Slot {
	return &Slot{canvas: canvas}
}

func (s *Slot) Canvas() string { return s.canvas }

// Replace destroys the current chart and installs c in its place.
func (s *Slot) Replace(c *Chart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current != c {
		s.current.Destroy()
	}
	c.Canvas = s.canvas
	s.current = c
}

// Current returns the installed chart or nil.
func (s *Slot) Current() *Chart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Clear destroys the installed chart, if any.
func (s *Slot) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.Destroy()
		s.current = nil
	}
}
