package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Bizimana-jeanluc/moviesBox/handlers"
)

// handleOptions answers CORS preflight requests; the router's CORS middleware
// has already set the headers.
func handleOptions(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Register mounts the site pages, the JSON API and the transfer endpoints onto
// the provided router.
func Register(
	r *mux.Router,
	logger *slog.Logger,
	pagesHandler *handlers.PagesHandler,
	metadataHandler *handlers.MetadataHandler,
	transferHandler *handlers.TransferHandler,
) {
	r.Use(RequestLogger(logger))

	// HTML pages
	r.HandleFunc("/", pagesHandler.Home).Methods(http.MethodGet)
	r.HandleFunc("/search", pagesHandler.Search).Methods(http.MethodGet)
	r.HandleFunc("/movie/{id}", pagesHandler.Movie).Methods(http.MethodGet)

	// Proxied downloads
	r.HandleFunc("/download/{id}", transferHandler.ProxyDownload).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/trending", metadataHandler.Trending).Methods(http.MethodGet)
	api.HandleFunc("/trending", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/search", metadataHandler.Search).Methods(http.MethodGet)
	api.HandleFunc("/search", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/movie/{id}", metadataHandler.MovieDetails).Methods(http.MethodGet)
	api.HandleFunc("/movie/{id}", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/play/{id}", metadataHandler.Play).Methods(http.MethodGet)
	api.HandleFunc("/play/{id}", handleOptions).Methods(http.MethodOptions)

	// Synthetic media
	api.HandleFunc("/stream/{slug}", transferHandler.Stream).Methods(http.MethodGet, http.MethodHead)
	api.HandleFunc("/stream/{slug}", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/download/{slug}", transferHandler.Download).Methods(http.MethodGet, http.MethodHead)
	api.HandleFunc("/download/{slug}", handleOptions).Methods(http.MethodOptions)

	// mux skips middleware for unmatched routes.
	r.NotFoundHandler = RequestLogger(logger)(http.HandlerFunc(pagesHandler.PageNotFound))
}
