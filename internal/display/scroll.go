package display

import "time"

// Word is a placed word moving across the viewport.
type Word struct {
	Text  string  `json:"text"`
	X     float64 `json:"x"`
	Width float64 `json:"width"`
}

// ScrollModel holds the active words and moves them left at a constant
// speed, evicting words that have fully left either margin.
type ScrollModel struct {
	viewportWidth float64
	scrollSpeed   float64 // pixels per second
	words         []Word
}

// NewScrollModel returns an empty model for the given viewport.
func NewScrollModel(viewportWidth, scrollSpeed float64) *ScrollModel {
	return &ScrollModel{
		viewportWidth: viewportWidth,
		scrollSpeed:   scrollSpeed,
	}
}

// Add appends a word at the given position.
func (m *ScrollModel) Add(text string, x, width float64) {
	m.words = append(m.words, Word{Text: text, X: x, Width: width})
}

// Advance moves every word left by speed*dt and evicts words fully past
// the left edge or placed past the right edge.
func (m *ScrollModel) Advance(dt time.Duration) {
	delta := m.scrollSpeed * dt.Seconds()
	for i := range m.words {
		m.words[i].X -= delta
	}

	// Words leave oldest first, so a single scan from the front covers
	// the left margin.
	start := 0
	for start < len(m.words) && m.words[start].X+m.words[start].Width < 0 {
		start++
	}
	m.words = m.words[start:]

	end := len(m.words)
	for end > 0 && m.words[end-1].X > m.viewportWidth {
		end--
	}
	m.words = m.words[:end]
}

// Words returns a copy of the active words.
func (m *ScrollModel) Words() []Word {
	out := make([]Word, len(m.words))
	copy(out, m.words)
	return out
}

// Last returns the most recently added active word.
func (m *ScrollModel) Last() (Word, bool) {
	if len(m.words) == 0 {
		return Word{}, false
	}
	return m.words[len(m.words)-1], true
}

// Len returns the number of active words.
func (m *ScrollModel) Len() int {
	return len(m.words)
}
