package display

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPacer() (*Pacer, *ScrollModel) {
	model := NewScrollModel(800, 70)
	pacer := NewPacer(model, FixedMeasurer{GlyphWidth: 10}, PacerConfig{
		Interval:    150 * time.Millisecond,
		AnchorX:     400,
		StartOffset: 50,
		WordSpacing: 10,
	})
	return pacer, model
}

func TestPacerReleasesOneWordPerInterval(t *testing.T) {
	pacer, _ := newTestPacer()
	pacer.PushText("alpha beta")

	t0 := time.Now()

	word, ok := pacer.Tick(t0)
	require.True(t, ok)
	assert.Equal(t, "alpha", word.Text)

	// Within the interval nothing more comes out.
	_, ok = pacer.Tick(t0.Add(100 * time.Millisecond))
	assert.False(t, ok)

	word, ok = pacer.Tick(t0.Add(150 * time.Millisecond))
	require.True(t, ok)
	assert.Equal(t, "beta", word.Text)

	assert.Equal(t, 0, pacer.PendingCount())
	assert.Equal(t, int64(2), pacer.Released())
}

func TestPacerKeepsFIFOAcrossPushes(t *testing.T) {
	pacer, _ := newTestPacer()
	pacer.PushText("one two")
	pacer.PushText("three")

	var got []string
	now := time.Now()
	for i := 0; i < 3; i++ {
		word, ok := pacer.Tick(now.Add(time.Duration(i) * 150 * time.Millisecond))
		require.True(t, ok)
		got = append(got, word.Text)
	}
	assert.Equal(t, []string{"one", "two", "three"}, got)
}

func TestPacerPlacement(t *testing.T) {
	pacer, model := newTestPacer()
	pacer.PushText("ab cd")

	t0 := time.Now()
	first, ok := pacer.Tick(t0)
	require.True(t, ok)
	// Empty line: anchor + start offset.
	assert.InDelta(t, 450, first.X, 1e-9)
	assert.InDelta(t, 20, first.Width, 1e-9)

	second, ok := pacer.Tick(t0.Add(200 * time.Millisecond))
	require.True(t, ok)
	// Behind the previous word with spacing.
	assert.InDelta(t, first.X+first.Width+10, second.X, 1e-9)

	assert.Equal(t, 2, model.Len())
}

func TestPacerPauseSuppressesWithoutDropping(t *testing.T) {
	pacer, model := newTestPacer()
	pacer.PushText("kept words")

	pacer.Pause()
	assert.True(t, pacer.Paused())

	now := time.Now()
	_, ok := pacer.Tick(now)
	assert.False(t, ok)
	assert.Equal(t, 2, pacer.PendingCount())
	assert.Equal(t, 0, model.Len())

	pacer.Resume()
	assert.False(t, pacer.Paused())

	_, ok = pacer.Tick(now.Add(time.Millisecond))
	assert.True(t, ok)
	assert.Equal(t, 1, pacer.PendingCount())
}

func TestPacerIgnoresEmptyText(t *testing.T) {
	pacer, _ := newTestPacer()
	pacer.PushText("")
	pacer.PushText("   ")
	assert.Equal(t, 0, pacer.PendingCount())

	_, ok := pacer.Tick(time.Now())
	assert.False(t, ok)
}

func TestFixedMeasurer(t *testing.T) {
	m := FixedMeasurer{GlyphWidth: 14}
	assert.InDelta(t, 70, m.MeasureWidth("hello"), 1e-9)
	assert.InDelta(t, 0, m.MeasureWidth(""), 1e-9)
}
