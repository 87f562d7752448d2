package transcription

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTextStripsTimestamps(t *testing.T) {
	output := "[00:00:00.000 --> 00:00:02.500]   Hello there.\n" +
		"[00:00:02.500 --> 00:00:04.000]   General Kenobi.\n"
	assert.Equal(t, "Hello there. General Kenobi.", extractText(output))
}

func TestExtractTextDropsBlankAudioMarkers(t *testing.T) {
	output := "[00:00:00.000 --> 00:00:01.000]   [BLANK_AUDIO]\n" +
		"[00:00:01.000 --> 00:00:02.000]   words\n" +
		"[BLANK_AUDIO]\n"
	assert.Equal(t, "words", extractText(output))
}

func TestExtractTextPlainLines(t *testing.T) {
	assert.Equal(t, "just text", extractText("  just text  \n\n"))
	assert.Equal(t, "", extractText(""))
	assert.Equal(t, "", extractText("\n\n\n"))
}

func TestWhisperCppLoadFailsWithoutExecutable(t *testing.T) {
	e := NewWhisperCppEngine(Config{
		WhisperPath:    "",
		SampleRate:     16000,
		TimeoutSeconds: 1,
	}, testLogger())
	assert.Error(t, e.Load(t.Context()))

	e = NewWhisperCppEngine(Config{
		WhisperPath:    "/nonexistent/whisper-binary",
		SampleRate:     16000,
		TimeoutSeconds: 1,
	}, testLogger())
	assert.Error(t, e.Load(t.Context()))
}
