package vtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `WEBVTT

1
00:00:01.000 --> 00:00:04.000
Welcome to the course.

2
00:00:04.500 --> 00:00:08.000 align:start
This lesson covers
the basics.
`

func TestParse(t *testing.T) {
	file, err := Parse(sample)
	require.NoError(t, err)
	require.Len(t, file.Cues, 2)

	assert.Equal(t, "1", file.Cues[0].ID)
	assert.Equal(t, "00:00:01.000 --> 00:00:04.000", file.Cues[0].Timing)
	assert.Equal(t, "Welcome to the course.", file.Cues[0].Text())

	// Cue settings stay attached to the timing line
	assert.Equal(t, "00:00:04.500 --> 00:00:08.000 align:start", file.Cues[1].Timing)
	assert.Equal(t, "This lesson covers the basics.", file.Cues[1].Text())
}

func TestParseWithoutHeader(t *testing.T) {
	_, err := Parse("00:00:01.000 --> 00:00:02.000\nNo header here\n")
	assert.Error(t, err)
}

func TestParseCRLFAndBOM(t *testing.T) {
	content := "\uFEFFWEBVTT\r\n\r\n00:00:01.000 --> 00:00:02.000\r\nHello\r\n"
	file, err := Parse(content)
	require.NoError(t, err)
	require.Len(t, file.Cues, 1)
	assert.Equal(t, "Hello", file.Cues[0].Text())
}

func TestParseWithoutCueIDs(t *testing.T) {
	content := "WEBVTT\n\n00:00:01.000 --> 00:00:02.000\nFirst\n\n00:00:02.000 --> 00:00:03.000\nSecond\n"
	file, err := Parse(content)
	require.NoError(t, err)
	require.Len(t, file.Cues, 2)
	assert.Empty(t, file.Cues[0].ID)
	assert.Equal(t, "Second", file.Cues[1].Text())
}

func TestSerializeRoundTrip(t *testing.T) {
	file, err := Parse(sample)
	require.NoError(t, err)

	again, err := Parse(file.Serialize())
	require.NoError(t, err)
	require.Len(t, again.Cues, len(file.Cues))
	for i := range file.Cues {
		assert.Equal(t, file.Cues[i].Timing, again.Cues[i].Timing)
		assert.Equal(t, file.Cues[i].Text(), again.Cues[i].Text())
	}
}

func TestApplyTexts(t *testing.T) {
	file, err := Parse(sample)
	require.NoError(t, err)

	require.NoError(t, file.ApplyTexts([]string{"Bienvenido al curso.", "Esta lección cubre lo básico."}))
	assert.Equal(t, "Bienvenido al curso.", file.Cues[0].Text())

	// Timings are untouched by translation
	assert.Equal(t, "00:00:04.500 --> 00:00:08.000 align:start", file.Cues[1].Timing)
}

func TestApplyTextsCountMismatch(t *testing.T) {
	file, err := Parse(sample)
	require.NoError(t, err)

	assert.Error(t, file.ApplyTexts([]string{"only one"}))
}

func TestTexts(t *testing.T) {
	file, err := Parse(sample)
	require.NoError(t, err)
	assert.Equal(t, []string{"Welcome to the course.", "This lesson covers the basics."}, file.Texts())
}
