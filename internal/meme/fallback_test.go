package meme_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/memehub/meme-api/internal/meme"
)

func TestFallbackFetchMapsItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/gimme/wholesomememes/2", r.URL.Path)
		fmt.Fprint(w, `{"memes":[
			{"postLink":"https://redd.it/x1","subreddit":"wholesomememes","title":"first","url":"https://i.redd.it/x1.png","nsfw":true,"spoiler":false,"author":"alice","ups":7},
			{"postLink":"https://redd.it/x2","subreddit":"wholesomememes","title":"second","url":"https://i.redd.it/x2.png"}
		]}`)
	}))
	defer srv.Close()

	src, err := meme.NewFallbackSource(srv.Client(), discardLogger(), srv.URL, "test-agent")
	require.NoError(t, err)

	set, err := src.Fetch(context.Background(), meme.Params{Subreddit: "wholesomememes", Count: 2})
	require.NoError(t, err)
	require.Equal(t, 2, set.Count)

	require.Equal(t, "alice", set.Memes[0].Author)
	require.True(t, set.Memes[0].NSFW)
	require.Equal(t, "unknown", set.Memes[1].Author, "missing author defaults to unknown")
	require.Equal(t, 0, set.Memes[1].Ups)
}

func TestFallbackFetchTruncatesToCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"memes":[
			{"postLink":"a","subreddit":"memes","title":"1","url":"https://i.redd.it/1.png"},
			{"postLink":"b","subreddit":"memes","title":"2","url":"https://i.redd.it/2.png"},
			{"postLink":"c","subreddit":"memes","title":"3","url":"https://i.redd.it/3.png"}
		]}`)
	}))
	defer srv.Close()

	src, err := meme.NewFallbackSource(srv.Client(), discardLogger(), srv.URL, "test-agent")
	require.NoError(t, err)

	set, err := src.Fetch(context.Background(), meme.Params{Subreddit: "memes", Count: 2})
	require.NoError(t, err)
	require.Equal(t, 2, set.Count)
	require.Len(t, set.Memes, 2)
}

func TestFallbackFetchSynthesizesPlaceholder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"memes":[{"postLink":"a","subreddit":"memes","title":"no image"}]}`)
	}))
	defer srv.Close()

	src, err := meme.NewFallbackSource(srv.Client(), discardLogger(), srv.URL, "test-agent")
	require.NoError(t, err)

	set, err := src.Fetch(context.Background(), meme.Params{Subreddit: "ghosttown", Count: 3})
	require.NoError(t, err)
	require.Equal(t, 1, set.Count, "a reachable but empty aggregator yields one placeholder")

	placeholder := set.Memes[0]
	require.Equal(t, "unknown", placeholder.Author)
	require.Equal(t, "ghosttown", placeholder.Subreddit)
	require.NotEmpty(t, placeholder.URL)
	require.NotEmpty(t, placeholder.Title)
}

func TestFallbackFetchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	src, err := meme.NewFallbackSource(srv.Client(), discardLogger(), srv.URL, "test-agent")
	require.NoError(t, err)

	_, err = src.Fetch(context.Background(), meme.Params{Subreddit: "memes", Count: 1})
	require.Error(t, err)
}
