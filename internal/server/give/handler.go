package give

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/memehub/meme-api/internal/meme"
)

const (
	routePrefix = "/give"

	headerContentType = "Content-Type"
	contentTypeJSON   = "application/json"
)

var subredditPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

var (
	errCountOutOfRange  = errors.New("count must be between 1 and 100")
	errInvalidSubreddit = errors.New("invalid subreddit: only letters, digits and underscores are allowed")
	errTooManySegments  = errors.New("too many path segments")
)

// Fetcher runs the fetch pipeline for validated parameters.
type Fetcher interface {
	Fetch(ctx context.Context, p meme.Params) ([]byte, error)
}

// Handler serves the /give endpoint.
type Handler struct {
	logger  *slog.Logger
	fetcher Fetcher
	timeout time.Duration
}

// New constructs a give handler.
func New(logger *slog.Logger, fetcher Fetcher, timeout time.Duration) *Handler {
	return &Handler{
		logger:  logger.With(slog.String("component", "give-handler")),
		fetcher: fetcher,
		timeout: timeout,
	}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeCORS(w.Header())

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodGet:
	default:
		h.respondJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
		return
	}

	params, err := parseParams(r.URL.Path)
	if err != nil {
		h.logger.Info("rejected request", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	payload, err := h.fetcher.Fetch(ctx, params)
	if err != nil {
		h.respondFetchError(w, params, err)
		return
	}

	w.Header().Set(headerContentType, contentTypeJSON)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func (h *Handler) respondFetchError(w http.ResponseWriter, params meme.Params, err error) {
	if errors.Is(err, meme.ErrNoResults) {
		h.logger.Info("no memes matched",
			slog.String("subreddit", params.Subreddit),
			slog.Int("count", params.Count))
		h.respondJSON(w, http.StatusNotFound, struct {
			Error string      `json:"error"`
			Count int         `json:"count"`
			Memes []meme.Meme `json:"memes"`
		}{
			Error: fmt.Sprintf("r/%s has no posts matching the filters", params.Subreddit),
			Count: 0,
			Memes: []meme.Meme{},
		})
		return
	}

	h.logger.Error("fetch pipeline failed",
		slog.String("subreddit", params.Subreddit),
		slog.Int("count", params.Count),
		slog.String("error", err.Error()))
	h.respondJSON(w, http.StatusInternalServerError, struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}{
		Error:   "Unable to fetch memes from any source",
		Message: err.Error(),
	})
}

// parseParams resolves the positional path segments after /give. One segment
// is a count when numeric, a subreddit otherwise; two segments are
// (subreddit, count) explicitly.
func parseParams(path string) (meme.Params, error) {
	trimmed := strings.Trim(strings.TrimPrefix(path, routePrefix), "/")

	params := meme.Params{Subreddit: meme.DefaultSubreddit, Count: meme.DefaultCount}
	if trimmed == "" {
		return params, nil
	}

	segments := strings.Split(trimmed, "/")
	switch len(segments) {
	case 1:
		if isNumeric(segments[0]) {
			return params, setCount(&params, segments[0])
		}
		return params, setSubreddit(&params, segments[0])
	case 2:
		if err := setSubreddit(&params, segments[0]); err != nil {
			return params, err
		}
		return params, setCount(&params, segments[1])
	default:
		return params, errTooManySegments
	}
}

func setSubreddit(params *meme.Params, value string) error {
	if !subredditPattern.MatchString(value) {
		return errInvalidSubreddit
	}
	params.Subreddit = value
	return nil
}

func setCount(params *meme.Params, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 || n > meme.MaxCount {
		return errCountOutOfRange
	}
	params.Count = n
	return nil
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, body any) {
	payload, err := json.Marshal(body)
	if err != nil {
		h.logger.Error("encode response failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set(headerContentType, contentTypeJSON)
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

func writeCORS(header http.Header) {
	header.Set("Access-Control-Allow-Origin", "*")
	header.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	header.Set("Access-Control-Allow-Headers", "Content-Type")
}

func isNumeric(v string) bool {
	if v == "" {
		return false
	}
	for _, ch := range v {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}
