package meme

import "errors"

var (
	// ErrNoResults marks a successful fetch that matched zero posts after
	// filtering. The handler maps it to a not-found response; it never
	// triggers the fallback source.
	ErrNoResults = errors.New("no memes matched the request")

	// ErrSourceBlocking marks the primary source actively refusing the
	// client. The message is safe to surface to callers.
	ErrSourceBlocking = errors.New("source temporarily blocking requests")

	// ErrAllSourcesFailed marks exhaustion of the whole source chain.
	ErrAllSourcesFailed = errors.New("all meme sources failed")
)
