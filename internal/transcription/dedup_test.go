package transcription

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCleanerStrategySelection(t *testing.T) {
	assert.IsType(t, passthroughCleaner{}, NewCleaner("none", 50))
	assert.IsType(t, passthroughCleaner{}, NewCleaner("something_else", 50))
	assert.IsType(t, &dedupCleaner{}, NewCleaner("simple_deduplication", 50))
}

func TestPassthroughCleanerKeepsText(t *testing.T) {
	c := NewCleaner("none", 50)
	assert.Equal(t, "the cat the cat", c.Clean("the cat the cat"))
}

func TestDedupCleanerDropsRepeatedPrefix(t *testing.T) {
	c := NewCleaner("simple_deduplication", 50)

	assert.Equal(t, "the cat", c.Clean("the cat"))

	// "cat" repeats the tail of what was already emitted.
	assert.Equal(t, "sat down", c.Clean("cat sat down"))
}

func TestDedupCleanerFullRepeatYieldsEmpty(t *testing.T) {
	c := NewCleaner("simple_deduplication", 50)

	assert.Equal(t, "hello world", c.Clean("hello world"))
	assert.Equal(t, "", c.Clean("hello world"))
	// Idempotent: repeating again still yields nothing.
	assert.Equal(t, "", c.Clean("hello world"))
}

func TestDedupCleanerPrefersLargestMatch(t *testing.T) {
	c := NewCleaner("simple_deduplication", 50)

	assert.Equal(t, "a b a b", c.Clean("a b a b"))
	// Both "a b" (k=2) and "a b a b" (k=4) match; the largest wins.
	assert.Equal(t, "c", c.Clean("a b a b c"))
}

func TestDedupCleanerEmptyInput(t *testing.T) {
	c := NewCleaner("simple_deduplication", 50)
	assert.Equal(t, "", c.Clean(""))
	assert.Equal(t, "", c.Clean("   "))
}

func TestDedupCleanerHistoryIsBounded(t *testing.T) {
	c := NewCleaner("simple_deduplication", 2)

	assert.Equal(t, "one two three", c.Clean("one two three"))
	// Only the last two words survive in history, so "one" is new again.
	assert.Equal(t, "one", c.Clean("one"))
	// History is now exactly [three one], a full repeat.
	assert.Equal(t, "", c.Clean("three one"))
}

func TestDedupCleanerRecordsEmittedWordsOnly(t *testing.T) {
	c := NewCleaner("simple_deduplication", 50)

	assert.Equal(t, "x y", c.Clean("x y"))
	assert.Equal(t, "z", c.Clean("y z"))
	// The dropped duplicate "y" was not re-appended, so history ends
	// in "y z" exactly once.
	assert.Equal(t, "w", c.Clean("y z w"))
}
