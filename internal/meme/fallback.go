package meme

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
)

const (
	placeholderAuthor = "unknown"
	placeholderImage  = "https://i.imgur.com/C7VY9tC.png"
	placeholderTitle  = "Could not find any memes, have this one instead"
)

// FallbackSource queries a secondary public aggregator when the primary
// source fails, reshaping its items into the same contract.
type FallbackSource struct {
	client    *http.Client
	logger    *slog.Logger
	base      *url.URL
	userAgent string
}

// NewFallbackSource constructs the secondary source from a base URL such as
// https://meme-api.com.
func NewFallbackSource(client *http.Client, logger *slog.Logger, rawBaseURL, userAgent string) (*FallbackSource, error) {
	base, err := url.Parse(rawBaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse fallback base url %q: %w", rawBaseURL, err)
	}

	return &FallbackSource{
		client:    client,
		logger:    logger.With(slog.String("component", "fallback-source")),
		base:      base,
		userAgent: userAgent,
	}, nil
}

// Name identifies this source in logs.
func (s *FallbackSource) Name() string { return "aggregator" }

type aggregatorMeme struct {
	PostLink  string `json:"postLink"`
	Subreddit string `json:"subreddit"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	NSFW      bool   `json:"nsfw"`
	Spoiler   bool   `json:"spoiler"`
	Author    string `json:"author"`
	Ups       int    `json:"ups"`
}

type aggregatorResponse struct {
	Memes []aggregatorMeme `json:"memes"`
}

// Fetch requests count items from the aggregator. A reachable aggregator
// with nothing usable still yields one placeholder item, so callers of a
// successful fallback always receive a non-empty set.
func (s *FallbackSource) Fetch(ctx context.Context, p Params) (ResultSet, error) {
	target := s.base.JoinPath("gimme", p.Subreddit, strconv.Itoa(p.Count))

	s.logger.Info("fetching from aggregator", slog.String("subreddit", p.Subreddit), slog.Int("count", p.Count))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return ResultSet{}, err
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return ResultSet{}, fmt.Errorf("aggregator request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ResultSet{}, fmt.Errorf("aggregator failed: %s", resp.Status)
	}

	var body aggregatorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return ResultSet{}, fmt.Errorf("decode aggregator response: %w", err)
	}

	memes := make([]Meme, 0, p.Count)
	for _, item := range body.Memes {
		if item.URL == "" {
			continue
		}
		memes = append(memes, mapAggregatorMeme(item))
		if len(memes) == p.Count {
			break
		}
	}

	if len(memes) == 0 {
		memes = append(memes, placeholderMeme(p.Subreddit))
	}

	return ResultSet{Count: len(memes), Memes: memes}, nil
}

func mapAggregatorMeme(item aggregatorMeme) Meme {
	author := item.Author
	if author == "" {
		author = placeholderAuthor
	}

	return Meme{
		PostLink:  item.PostLink,
		Subreddit: item.Subreddit,
		Title:     item.Title,
		URL:       item.URL,
		NSFW:      item.NSFW,
		Spoiler:   item.Spoiler,
		Author:    author,
		Ups:       item.Ups,
	}
}

func placeholderMeme(subreddit string) Meme {
	return Meme{
		PostLink:  "https://reddit.com/r/" + subreddit,
		Subreddit: subreddit,
		Title:     placeholderTitle,
		URL:       placeholderImage,
		Author:    placeholderAuthor,
	}
}
