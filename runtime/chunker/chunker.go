// Package chunker splits text into pieces small enough for a length-limited
// text-to-speech request without cutting a clause in half.
//
// Text is first broken into segments ending in '.' or ',' (the punctuation
// stays with the segment it terminates). Segments are then packed greedily
// into chunks of at most MaxLength characters. A segment is never split, so a
// single segment longer than the limit becomes a chunk of its own.
//
// Lengths are counted in runes, not bytes; an invalid UTF-8 byte counts as
// one rune and is passed through unchanged.
package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultMaxLength is the per-request character limit of the sounds service.
const DefaultMaxLength = 200

// Separators that close a segment.
const (
	SentenceSeparator = '.'
	ClauseSeparator   = ','
)

// noSeparator marks a trailing segment that ends without punctuation.
const noSeparator rune = 0

// Segment is a run of text ending at a clause or sentence boundary.
type Segment struct {
	// Body is the text before the separator.
	Body string

	// Separator is the punctuation that closed the segment, or 0 for the
	// unterminated tail of the input.
	Separator rune
}

// Terminated reports whether the segment ends with punctuation.
func (s Segment) Terminated() bool {
	return s.Separator != noSeparator
}

// String returns the segment text including its separator.
func (s Segment) String() string {
	if !s.Terminated() {
		return s.Body
	}
	return s.Body + string(s.Separator)
}

// Len returns the segment length in runes, separator included.
func (s Segment) Len() int {
	n := utf8.RuneCountInString(s.Body)
	if s.Terminated() {
		n++
	}
	return n
}

// SplitSegments breaks text into segments at every '.' and ','.
// Only the last segment may be unterminated. Segment bodies are slices of
// text, so whitespace and any invalid UTF-8 bytes are kept verbatim.
func SplitSegments(text string) []Segment {
	var segments []Segment

	// Both separators are ASCII and never occur inside a multi-byte sequence.
	start := 0
	for i := 0; i < len(text); i++ {
		if sep := rune(text[i]); sep == SentenceSeparator || sep == ClauseSeparator {
			segments = append(segments, Segment{Body: text[start:i], Separator: sep})
			start = i + 1
		}
	}

	if start < len(text) {
		segments = append(segments, Segment{Body: text[start:]})
	}

	return segments
}

// DivideIntoChunks packs the segments of text into chunks of at most maxLen
// runes. The length check runs before each segment is appended and only
// considers that segment; a segment longer than maxLen is appended whole to
// an empty chunk. Concatenating the result gives back text unchanged.
//
// Empty text yields an empty, non-nil slice.
func DivideIntoChunks(text string, maxLen int) ([]string, error) {
	if maxLen <= 0 {
		return nil, &ChunkingError{MaxLength: maxLen, Cause: ErrInvalidMaxLength}
	}

	chunks := make([]string, 0)

	var (
		buf    strings.Builder
		bufLen int
	)

	for _, seg := range SplitSegments(text) {
		segLen := seg.Len()
		if bufLen > 0 && bufLen+segLen > maxLen {
			chunks = append(chunks, buf.String())
			buf.Reset()
			bufLen = 0
		}

		if err := writeSegment(&buf, seg); err != nil {
			return nil, &ChunkingError{MaxLength: maxLen, Cause: err}
		}
		bufLen += segLen
	}

	if buf.Len() > 0 {
		chunks = append(chunks, buf.String())
	}

	return chunks, nil
}

func writeSegment(buf *strings.Builder, seg Segment) error {
	if !seg.Terminated() {
		_, err := buf.WriteString(seg.Body)
		return err
	}
	_, err := fmt.Fprintf(buf, "%s%c", seg.Body, seg.Separator)
	return err
}
