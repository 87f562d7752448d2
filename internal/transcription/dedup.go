package transcription

import "strings"

// Cleaner removes text the listener has already seen from a freshly
// transcribed fragment. The empty result means the whole fragment was a
// repeat.
type Cleaner interface {
	Clean(text string) string
}

// NewCleaner returns the cleaner for the configured strategy. Unknown
// strategies behave as "none".
func NewCleaner(strategy string, historySize int) Cleaner {
	if strategy == "simple_deduplication" {
		return &dedupCleaner{history: newWordHistory(historySize)}
	}
	return passthroughCleaner{}
}

type passthroughCleaner struct{}

func (passthroughCleaner) Clean(text string) string {
	return text
}

// wordHistory is a bounded FIFO of the most recently emitted words.
type wordHistory struct {
	words []string
	limit int
}

func newWordHistory(limit int) *wordHistory {
	if limit <= 0 {
		limit = 50
	}
	return &wordHistory{limit: limit}
}

func (h *wordHistory) append(words []string) {
	h.words = append(h.words, words...)
	if len(h.words) > h.limit {
		h.words = h.words[len(h.words)-h.limit:]
	}
}

// dedupCleaner drops the longest prefix of the new fragment that
// matches a suffix of the emitted-word history, then records only the
// words it lets through.
type dedupCleaner struct {
	history *wordHistory
}

func (c *dedupCleaner) Clean(text string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	k := c.matchLength(words)
	emitted := words[k:]
	c.history.append(emitted)
	return strings.Join(emitted, " ")
}

// matchLength returns the largest k such that the last k history words
// equal the first k new words.
func (c *dedupCleaner) matchLength(words []string) int {
	max := len(words)
	if len(c.history.words) < max {
		max = len(c.history.words)
	}
	for k := max; k > 0; k-- {
		if equalWords(c.history.words[len(c.history.words)-k:], words[:k]) {
			return k
		}
	}
	return 0
}

func equalWords(a, b []string) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
