package retrieval

import "fmt"

// Source tags where a document came from. It is a closed set: every
// variant has its own metadata resolver in Repository.ResolveMetadata,
// and resolveHit rejects anything outside the set so a new source cannot
// silently fall through as a no-op.
type Source string

const (
	// SourceFile is a document collected from the local filesystem.
	SourceFile Source = "file"

	// SourceWeb is a page from browsing history.
	SourceWeb Source = "web"

	// SourceScreen is text captured from the screen.
	SourceScreen Source = "screen"
)

// ParseSource validates a raw payload value against the known variants.
func ParseSource(raw string) (Source, error) {
	switch Source(raw) {
	case SourceFile, SourceWeb, SourceScreen:
		return Source(raw), nil
	default:
		return "", fmt.Errorf("unknown source %q", raw)
	}
}

// Valid reports whether s is a known variant.
func (s Source) Valid() bool {
	_, err := ParseSource(string(s))
	return err == nil
}
