package meme

import (
	"context"
	"strconv"
)

const (
	// DefaultSubreddit is used when the request names no subreddit.
	DefaultSubreddit = "memes"
	// DefaultCount is used when the request names no count.
	DefaultCount = 1
	// MaxCount bounds how many memes a single request may ask for.
	MaxCount = 100
)

// Meme is the item shape served to clients.
type Meme struct {
	PostLink  string `json:"postLink"`
	Subreddit string `json:"subreddit"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	NSFW      bool   `json:"nsfw"`
	Spoiler   bool   `json:"spoiler"`
	Author    string `json:"author"`
	Ups       int    `json:"ups"`
}

// ResultSet is the response body for a successful request.
type ResultSet struct {
	Count int    `json:"count"`
	Memes []Meme `json:"memes"`
}

// Params are the validated request parameters. Values reaching the fetch
// pipeline are guaranteed to satisfy the boundary validation: an
// alphanumeric/underscore subreddit and a count in [1, MaxCount].
type Params struct {
	Subreddit string
	Count     int
}

// CacheKey returns the deterministic fingerprint for this parameter pair.
func (p Params) CacheKey() string {
	return "memes:" + p.Subreddit + ":" + strconv.Itoa(p.Count)
}

// Source is one provider of meme content. Sources are consulted in order;
// a nil error short-circuits the chain even when the set is empty.
type Source interface {
	Name() string
	Fetch(ctx context.Context, p Params) (ResultSet, error)
}
