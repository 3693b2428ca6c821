package crawler

import "context"

// Session is a single fetch handle, typically one browser tab. A session is
// owned by exactly one task for its lifetime.
type Session interface {
	// Fetch navigates to target and returns the page's visible text.
	Fetch(ctx context.Context, target string) (string, error)
	Close() error
}

// SessionPool opens fresh fetch sessions against a shared fetch environment.
type SessionPool interface {
	Open(ctx context.Context) (Session, error)
}

// Checker detects misspelled tokens in a text blob.
type Checker interface {
	Check(text string) []Span
}

// ArtifactStore persists extracted page text for later auditing.
type ArtifactStore interface {
	PutObject(ctx context.Context, path string, contentType string, data []byte) (string, error)
}

// Hasher computes digests used to name stored artifacts.
type Hasher interface {
	Hash(data []byte) (string, error)
}
