// Package chunker splits segment text into overlapping, length-bounded
// chunks. It prefers sentence-aware chunking and falls back to a
// fixed-size sliding window when the text defeats sentence splitting.
package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 120

// Sentence chunking is accepted when at least qualityThreshold of the
// produced chunks fall within [minSizeFactor, maxSizeFactor] × chunkSize.
const (
	qualityThreshold = 0.7
	minSizeFactor    = 0.3
	maxSizeFactor    = 1.5
)

// windowCutZone is the trailing fraction of a window in which the
// fallback may cut early at a whitespace.
const windowCutZone = 0.3

// Span is one chunk of the input text. Offsets are byte positions into
// the text passed to Chunk; Text is always text[Start:End].
type Span struct {
	// Text is the chunk content.
	Text string

	// Start is the offset of the chunk's first byte.
	Start int

	// End is the offset one past the chunk's last byte.
	End int

	// Index is the chunk's ordinal position.
	Index int
}

// Chunker splits text into overlapping chunks.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Ensure overlap doesn't exceed chunk size
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	return c
}

// ChunkSize returns the configured chunk size.
func (c *Chunker) ChunkSize() int {
	return c.chunkSize
}

// Overlap returns the configured overlap.
func (c *Chunker) Overlap() int {
	return c.overlap
}

// Chunk splits text into spans. Empty or whitespace-only input yields
// no spans; text no longer than the chunk size yields exactly one.
//
// Sentence-aware chunking is attempted first. If fewer than 70% of its
// chunks land near the target size the text is not sentence-friendly
// (no punctuation, enormous sentences) and a sliding window takes over.
func (c *Chunker) Chunk(text string) []Span {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	if len(text) <= c.chunkSize {
		return []Span{{Text: text, Start: 0, End: len(text), Index: 0}}
	}

	spans := c.sentenceChunks(text)
	if !c.acceptable(spans) {
		spans = c.windowChunks(text)
	}

	for i := range spans {
		spans[i].Index = i
		spans[i].Text = text[spans[i].Start:spans[i].End]
	}

	return spans
}

// sentenceChunks greedily packs whole sentences into chunks, seeding
// each chunk after the first with the tail of its predecessor.
func (c *Chunker) sentenceChunks(text string) []Span {
	sents := sentenceSpans(text)
	if len(sents) == 0 {
		return nil
	}

	var spans []Span
	chunkStart := -1
	lastEnd := -1

	for k := 0; k < len(sents); {
		s := sents[k]

		// A fresh chunk always takes its first sentence, even one
		// longer than the chunk size; the quality gate judges that.
		if lastEnd < 0 {
			if chunkStart < 0 {
				chunkStart = s[0]
			}
			lastEnd = s[1]
			k++
			continue
		}

		if s[1]-chunkStart <= c.chunkSize {
			lastEnd = s[1]
			k++
			continue
		}

		spans = append(spans, Span{Start: chunkStart, End: lastEnd})
		chunkStart = c.overlapStart(text, chunkStart, lastEnd)
		lastEnd = -1
	}

	if lastEnd >= 0 {
		spans = append(spans, Span{Start: chunkStart, End: lastEnd})
	}

	return spans
}

// overlapStart returns where the next chunk begins: within the last
// overlap bytes of [start, end), moved forward past the first
// whitespace so chunks open on a word boundary when one exists.
// Returns -1 when no overlap is configured.
func (c *Chunker) overlapStart(text string, start, end int) int {
	if c.overlap <= 0 {
		return -1
	}

	from := end - c.overlap
	if from < start {
		from = start
	}
	for from < end && !utf8.RuneStart(text[from]) {
		from++
	}

	if idx := strings.IndexFunc(text[from:end], unicode.IsSpace); idx >= 0 {
		ws := from + idx
		for ws < end {
			r, size := utf8.DecodeRuneInString(text[ws:end])
			if !unicode.IsSpace(r) {
				break
			}
			ws += size
		}
		if ws < end {
			return ws
		}
	}

	return from
}

// acceptable reports whether sentence chunking produced mostly
// well-sized chunks.
func (c *Chunker) acceptable(spans []Span) bool {
	if len(spans) == 0 {
		return false
	}

	lo := int(float64(c.chunkSize) * minSizeFactor)
	hi := int(float64(c.chunkSize) * maxSizeFactor)

	within := 0
	for _, s := range spans {
		if n := s.End - s.Start; n >= lo && n <= hi {
			within++
		}
	}

	return float64(within) >= qualityThreshold*float64(len(spans))
}

// windowChunks cuts fixed-size windows, preferring the last whitespace
// in the final stretch of each window, and advances by overlap bytes
// back from the cut. Forward progress is guaranteed even on input with
// no whitespace at all.
func (c *Chunker) windowChunks(text string) []Span {
	var spans []Span

	start := 0
	for start < len(text) {
		end := start + c.chunkSize
		if end >= len(text) {
			spans = append(spans, Span{Start: start, End: len(text)})
			break
		}

		for end > start && !utf8.RuneStart(text[end]) {
			end--
		}

		cutFrom := start + int(float64(c.chunkSize)*(1-windowCutZone))
		if ws := lastSpace(text, cutFrom, end); ws >= 0 {
			end = ws
		}

		spans = append(spans, Span{Start: start, End: end})

		next := end - c.overlap
		if next <= start {
			next = end
		}
		for next < len(text) && !utf8.RuneStart(text[next]) {
			next++
		}
		start = next
	}

	return spans
}

// lastSpace returns the offset of the last whitespace rune in
// text[from:to], or -1 when there is none.
func lastSpace(text string, from, to int) int {
	if from < 0 {
		from = 0
	}
	for i := to; i > from; {
		r, size := utf8.DecodeLastRuneInString(text[from:i])
		i -= size
		if unicode.IsSpace(r) {
			return i
		}
	}
	return -1
}

// sentenceSpans splits text into sentence spans. A sentence ends at
// terminal punctuation followed by whitespace and a capital letter, or
// at end of text. Spans exclude surrounding whitespace.
func sentenceSpans(text string) [][2]int {
	var spans [][2]int

	start := -1
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])

		if start < 0 {
			if !unicode.IsSpace(r) {
				start = i
			}
			i += size
			continue
		}

		if r == '.' || r == '!' || r == '?' {
			j := i + size
			for j < len(text) {
				r2, s2 := utf8.DecodeRuneInString(text[j:])
				if r2 != '.' && r2 != '!' && r2 != '?' {
					break
				}
				j += s2
			}

			if j >= len(text) || startsNewSentence(text[j:]) {
				spans = append(spans, [2]int{start, j})
				start = -1
			}
			i = j
			continue
		}

		i += size
	}

	if start >= 0 {
		end := len(text)
		for end > start {
			r, size := utf8.DecodeLastRuneInString(text[start:end])
			if !unicode.IsSpace(r) {
				break
			}
			end -= size
		}
		if end > start {
			spans = append(spans, [2]int{start, end})
		}
	}

	return spans
}

// startsNewSentence reports whether rest opens with whitespace followed
// by a capital letter, or contains only whitespace to end of text.
func startsNewSentence(rest string) bool {
	sawSpace := false
	for len(rest) > 0 {
		r, size := utf8.DecodeRuneInString(rest)
		if unicode.IsSpace(r) {
			sawSpace = true
			rest = rest[size:]
			continue
		}
		return sawSpace && unicode.IsUpper(r)
	}
	return sawSpace
}
