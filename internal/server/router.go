package server

import (
	"log/slog"
	"net/http"

	"github.com/memehub/meme-api/internal/config"
	givehandler "github.com/memehub/meme-api/internal/server/give"
)

// NewHandler assembles the HTTP routes.
func NewHandler(cfg config.Config, logger *slog.Logger, fetcher givehandler.Fetcher) http.Handler {
	give := givehandler.New(logger, fetcher, cfg.RequestTimeout)

	mux := http.NewServeMux()
	mux.Handle("/give", give)
	mux.Handle("/give/", give)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return mux
}
