package meme

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// mediaHostPrefixes are the direct-media URL patterns a post must carry to
// be served. Gallery links, crossposts, and external pages are filtered out.
var mediaHostPrefixes = []string{
	"https://i.redd.it/",
	"https://i.imgur.com/",
	"https://preview.redd.it/",
}

// RedditSource fetches posts from the hot listing of a subreddit and
// reshapes them into the public meme contract.
type RedditSource struct {
	client    *http.Client
	logger    *slog.Logger
	base      *url.URL
	userAgent string
}

// NewRedditSource constructs the primary source from a base URL such as
// https://www.reddit.com.
func NewRedditSource(client *http.Client, logger *slog.Logger, rawBaseURL, userAgent string) (*RedditSource, error) {
	base, err := url.Parse(rawBaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse reddit base url %q: %w", rawBaseURL, err)
	}

	return &RedditSource{
		client:    client,
		logger:    logger.With(slog.String("component", "reddit-source")),
		base:      base,
		userAgent: userAgent,
	}, nil
}

// Name identifies this source in logs.
func (s *RedditSource) Name() string { return "reddit" }

type redditListing struct {
	Data *struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID        string `json:"id"`
	Subreddit string `json:"subreddit"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Author    string `json:"author"`
	Ups       int    `json:"ups"`
	Over18    bool   `json:"over_18"`
	Spoiler   bool   `json:"spoiler"`
	Stickied  bool   `json:"stickied"`
}

// Fetch requests the hot listing, over-fetching to compensate for filtering,
// and keeps the first matching posts in upstream order.
func (s *RedditSource) Fetch(ctx context.Context, p Params) (ResultSet, error) {
	limit := p.Count * 2
	if limit > MaxCount {
		limit = MaxCount
	}

	target := s.base.JoinPath("r", p.Subreddit, "hot.json")
	target.RawQuery = url.Values{"limit": {strconv.Itoa(limit)}}.Encode()

	s.logger.Info("fetching listing", slog.String("subreddit", p.Subreddit), slog.Int("limit", limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return ResultSet{}, err
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return ResultSet{}, fmt.Errorf("reddit listing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return ResultSet{}, fmt.Errorf("reddit returned %s: %w", resp.Status, ErrSourceBlocking)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ResultSet{}, fmt.Errorf("reddit listing failed: %s", resp.Status)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return ResultSet{}, fmt.Errorf("decode reddit listing: %w", err)
	}
	if listing.Data == nil {
		return ResultSet{}, fmt.Errorf("reddit listing missing data envelope")
	}

	memes := make([]Meme, 0, p.Count)
	for _, child := range listing.Data.Children {
		if !keepPost(child.Data) {
			continue
		}
		memes = append(memes, mapPost(child.Data))
		if len(memes) == p.Count {
			break
		}
	}

	return ResultSet{Count: len(memes), Memes: memes}, nil
}

func keepPost(post redditPost) bool {
	if post.Stickied || post.Over18 {
		return false
	}
	if strings.TrimSpace(post.Title) == "" {
		return false
	}
	for _, prefix := range mediaHostPrefixes {
		if strings.HasPrefix(post.URL, prefix) {
			return true
		}
	}
	return false
}

func mapPost(post redditPost) Meme {
	return Meme{
		PostLink:  "https://redd.it/" + post.ID,
		Subreddit: post.Subreddit,
		Title:     post.Title,
		URL:       post.URL,
		NSFW:      post.Over18,
		Spoiler:   post.Spoiler,
		Author:    post.Author,
		Ups:       post.Ups,
	}
}
