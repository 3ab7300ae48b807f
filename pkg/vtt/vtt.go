// Package vtt parses and serializes WebVTT subtitle files while preserving
// cue identifiers, timestamps and cue settings, so a file can be rewritten
// with translated text and nothing else changed.
package vtt

import (
	"fmt"
	"regexp"
	"strings"
)

// Cue is one subtitle cue. Timing holds the raw timestamp line (including any
// cue settings after the arrow) exactly as it appeared in the source file.
type Cue struct {
	ID     string
	Timing string
	Lines  []string
}

// Text returns the cue text with line breaks collapsed to spaces.
func (c *Cue) Text() string {
	return strings.Join(c.Lines, " ")
}

// SetText replaces the cue text with a single line.
func (c *Cue) SetText(text string) {
	c.Lines = []string{text}
}

// File is a parsed WebVTT document.
type File struct {
	// Header holds everything before the first cue: the WEBVTT line plus any
	// metadata, NOTE or STYLE blocks.
	Header []string
	Cues   []Cue
}

// timestampRegex matches a cue timing line, e.g.
// "00:00:01.000 --> 00:00:05.000 align:start".
var timestampRegex = regexp.MustCompile(`^(?:\d{2,}:)?\d{2}:\d{2}\.\d{3}\s*-->\s*(?:\d{2,}:)?\d{2}:\d{2}\.\d{3}`)

// Parse parses WebVTT content. It fails if the file does not start with a
// WEBVTT header.
func Parse(content string) (*File, error) {
	content = strings.TrimPrefix(content, "\uFEFF")
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	if len(lines) == 0 || !strings.HasPrefix(strings.TrimSpace(lines[0]), "WEBVTT") {
		return nil, fmt.Errorf("missing WEBVTT header")
	}

	file := &File{}
	i := 0

	// Everything up to the first blank-line-separated cue block is header.
	for i < len(lines) {
		line := lines[i]
		if timestampRegex.MatchString(strings.TrimSpace(line)) {
			break
		}
		// A candidate cue identifier directly followed by a timing line also
		// ends the header.
		if strings.TrimSpace(line) != "" && i+1 < len(lines) &&
			timestampRegex.MatchString(strings.TrimSpace(lines[i+1])) &&
			!strings.HasPrefix(line, "NOTE") && !strings.HasPrefix(line, "STYLE") &&
			len(file.Header) > 0 {
			break
		}
		file.Header = append(file.Header, line)
		i++
	}

	// Trim trailing blank lines off the header; Serialize re-adds separation.
	for len(file.Header) > 0 && strings.TrimSpace(file.Header[len(file.Header)-1]) == "" {
		file.Header = file.Header[:len(file.Header)-1]
	}

	for i < len(lines) {
		// Skip blank separators between cues.
		for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
			i++
		}
		if i >= len(lines) {
			break
		}

		var cue Cue
		line := strings.TrimSpace(lines[i])
		if !timestampRegex.MatchString(line) {
			cue.ID = line
			i++
			if i >= len(lines) {
				return nil, fmt.Errorf("cue %q has no timing line", cue.ID)
			}
			line = strings.TrimSpace(lines[i])
		}
		if !timestampRegex.MatchString(line) {
			return nil, fmt.Errorf("invalid timing line: %q", line)
		}
		cue.Timing = line
		i++

		for i < len(lines) && strings.TrimSpace(lines[i]) != "" {
			cue.Lines = append(cue.Lines, strings.TrimRight(lines[i], "\r"))
			i++
		}
		file.Cues = append(file.Cues, cue)
	}

	return file, nil
}

// Serialize renders the file back to WebVTT text.
func (f *File) Serialize() string {
	var b strings.Builder

	if len(f.Header) == 0 {
		b.WriteString("WEBVTT\n")
	} else {
		for _, line := range f.Header {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	for i := range f.Cues {
		b.WriteString("\n")
		cue := &f.Cues[i]
		if cue.ID != "" {
			b.WriteString(cue.ID)
			b.WriteString("\n")
		}
		b.WriteString(cue.Timing)
		b.WriteString("\n")
		for _, line := range cue.Lines {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	return b.String()
}

// Texts returns the cue texts in order, one entry per cue.
func (f *File) Texts() []string {
	texts := make([]string, len(f.Cues))
	for i := range f.Cues {
		texts[i] = f.Cues[i].Text()
	}
	return texts
}

// ApplyTexts replaces every cue's text in order. The slice must have exactly
// one entry per cue.
func (f *File) ApplyTexts(texts []string) error {
	if len(texts) != len(f.Cues) {
		return fmt.Errorf("text count mismatch: %d texts for %d cues", len(texts), len(f.Cues))
	}
	for i := range f.Cues {
		f.Cues[i].SetText(texts[i])
	}
	return nil
}
