package display

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// TextMeasurer estimates the rendered pixel width of a word.
type TextMeasurer interface {
	MeasureWidth(text string) float64
}

// FixedMeasurer estimates width as a constant number of pixels per
// glyph, good enough for monospace-ish rendering.
type FixedMeasurer struct {
	GlyphWidth float64
}

func (m FixedMeasurer) MeasureWidth(text string) float64 {
	return float64(len([]rune(text))) * m.GlyphWidth
}

// PacerConfig contains word release configuration
type PacerConfig struct {
	Interval    time.Duration // minimum time between releases
	AnchorX     float64       // horizontal anchor for a word placed on an empty line
	StartOffset float64       // offset from the anchor
	WordSpacing float64       // pixels between consecutive words
}

// Pacer buffers incoming transcript text and releases it one word at a
// time onto the scroll model, at most one word per interval. Pausing
// suppresses releases without dropping anything.
type Pacer struct {
	model    *ScrollModel
	measurer TextMeasurer
	config   PacerConfig

	mu          sync.Mutex
	pending     []string
	lastRelease time.Time
	released    int64

	paused atomic.Bool
}

// NewPacer creates a pacer feeding the given scroll model.
func NewPacer(model *ScrollModel, measurer TextMeasurer, config PacerConfig) *Pacer {
	return &Pacer{
		model:    model,
		measurer: measurer,
		config:   config,
	}
}

// PushText splits the text on whitespace and queues the words.
func (p *Pacer) PushText(text string) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return
	}
	p.mu.Lock()
	p.pending = append(p.pending, words...)
	p.mu.Unlock()
}

// Tick releases at most one pending word if the release interval has
// elapsed and the pacer is not paused. It returns the released word.
func (p *Pacer) Tick(now time.Time) (Word, bool) {
	if p.paused.Load() {
		return Word{}, false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.pending) == 0 {
		return Word{}, false
	}
	if !p.lastRelease.IsZero() && now.Sub(p.lastRelease) < p.config.Interval {
		return Word{}, false
	}

	text := p.pending[0]
	p.pending = p.pending[1:]
	p.lastRelease = now
	p.released++

	width := p.measurer.MeasureWidth(text)
	x := p.config.AnchorX + p.config.StartOffset
	if last, ok := p.model.Last(); ok {
		// Continue the line behind the previous word when one is still
		// on screen.
		candidate := last.X + last.Width + p.config.WordSpacing
		if candidate > x {
			x = candidate
		}
	}

	p.model.Add(text, x, width)
	return Word{Text: text, X: x, Width: width}, true
}

// Pause suppresses word releases. Pending and active words are kept.
func (p *Pacer) Pause() {
	p.paused.Store(true)
}

// Resume re-enables word releases.
func (p *Pacer) Resume() {
	p.paused.Store(false)
}

// Paused reports whether releases are currently suppressed.
func (p *Pacer) Paused() bool {
	return p.paused.Load()
}

// PendingCount returns the number of words waiting for release.
func (p *Pacer) PendingCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// Released returns the total number of words released so far.
func (p *Pacer) Released() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.released
}
