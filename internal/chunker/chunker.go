// Package chunker splits raw document text into overlapping segments
// while preserving semantic boundaries where possible.
package chunker

import (
	"strings"
	"unicode/utf8"
)

// defaultSeparators are tried coarse-to-fine: paragraph break, line break,
// sentence end, word boundary. The empty string means character-level split.
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// snippetMaxLen bounds the stored preview text for a chunk.
const snippetMaxLen = 200

// Chunk is one segment of a parent document.
type Chunk struct {
	// Text is the segment content.
	Text string

	// Index is the zero-based position of this chunk within its document.
	Index int

	// DocumentID identifies the parent document.
	DocumentID string

	// Snippet is a short preview (at most 200 characters) used for
	// search-result rendering without a second lookup.
	Snippet string
}

// Splitter produces overlapping chunks from raw text.
//
// Splitting is deterministic and pure: the same input always produces the
// same chunks, and no I/O is performed.
type Splitter struct {
	chunkSize int
	overlap   int
}

// NewSplitter creates a Splitter.
//
// chunkSize is the target maximum chunk length in bytes. overlap is the
// minimum number of trailing bytes of one chunk carried into the next.
// Non-positive or inconsistent values fall back to sane defaults.
func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = chunkSize / 5
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap}
}

// Split splits text into chunks of at most chunkSize bytes, carrying at
// least overlap bytes between consecutive chunks. A single indivisible
// token longer than chunkSize passes through whole.
//
// Empty input yields nil. Whitespace-only chunks are dropped.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	raw := splitRecursive(text, s.chunkSize, s.overlap, defaultSeparators)

	out := make([]string, 0, len(raw))
	for _, c := range raw {
		if strings.TrimSpace(c) == "" {
			continue
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SplitDocument splits text and wraps each segment as a Chunk carrying the
// parent document id and a bounded snippet.
func (s *Splitter) SplitDocument(docID, text string) []Chunk {
	parts := s.Split(text)
	if len(parts) == 0 {
		return nil
	}
	chunks := make([]Chunk, len(parts))
	for i, p := range parts {
		chunks[i] = Chunk{
			Text:       p,
			Index:      i,
			DocumentID: docID,
			Snippet:    Snippet(p),
		}
	}
	return chunks
}

// Snippet returns a preview of text truncated to at most snippetMaxLen
// characters on a rune boundary.
func Snippet(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= snippetMaxLen {
		return text
	}
	runes := []rune(text)
	return string(runes[:snippetMaxLen])
}

// splitRecursive splits text using the first separator from seps that is
// actually present, packing pieces greedily and recursing into pieces that
// are individually longer than chunkSize with the remaining finer
// separators.
func splitRecursive(text string, chunkSize, overlap int, seps []string) []string {
	if len(text) <= chunkSize {
		return []string{text}
	}

	// Pick the first separator present in the text. The final fallback is
	// the empty separator: character-level split.
	sep := ""
	var finer []string
	for i, candidate := range seps {
		if candidate == "" {
			sep = ""
			finer = nil
			break
		}
		if strings.Contains(text, candidate) {
			sep = candidate
			finer = seps[i+1:]
			break
		}
	}

	pieces := splitKeepSep(text, sep)

	var chunks []string
	var buf []string
	bufLen := 0

	flush := func() {
		if bufLen == 0 {
			return
		}
		chunks = append(chunks, strings.Join(buf, ""))
		// Retain a suffix of the buffer worth at least overlap bytes as
		// the seed of the next chunk: pop leading pieces while what
		// remains still exceeds the overlap budget.
		for len(buf) > 0 && bufLen > overlap {
			bufLen -= len(buf[0])
			buf = buf[1:]
		}
	}

	for _, piece := range pieces {
		if len(piece) > chunkSize {
			// The piece alone exceeds the budget: emit what we have,
			// then recurse into the piece with finer separators. The
			// recursive output is appended directly without re-merging.
			flush()
			buf = nil
			bufLen = 0
			if sep == "" {
				// Character-level split cannot produce oversized
				// pieces; guard against pathological inputs anyway.
				chunks = append(chunks, piece)
				continue
			}
			chunks = append(chunks, splitRecursive(piece, chunkSize, overlap, finer)...)
			continue
		}
		if bufLen+len(piece) > chunkSize {
			flush()
		}
		buf = append(buf, piece)
		bufLen += len(piece)
	}
	if bufLen > 0 {
		chunks = append(chunks, strings.Join(buf, ""))
	}
	return chunks
}

// splitKeepSep splits text by sep, keeping the separator attached to the
// preceding piece so that joining pieces reconstructs the original text.
// An empty sep splits into individual runes.
func splitKeepSep(text, sep string) []string {
	if sep == "" {
		runes := []rune(text)
		pieces := make([]string, len(runes))
		for i, r := range runes {
			pieces[i] = string(r)
		}
		return pieces
	}
	parts := strings.Split(text, sep)
	pieces := make([]string, 0, len(parts))
	for i, p := range parts {
		if i < len(parts)-1 {
			p += sep
		}
		if p == "" {
			continue
		}
		pieces = append(pieces, p)
	}
	return pieces
}
