package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/poiesic/pagesearch/core"
	"github.com/poiesic/pagesearch/search"
	"github.com/poiesic/pagesearch/storage"
)

const (
	maxRequestBytes = 1 << 20
	shutdownTimeout = 10 * time.Second
)

// Server answers the HTTP API from a book repository and a searcher.
type Server struct {
	books    storage.BookRepository
	searcher *search.Searcher
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewServer creates a new server.
func NewServer(books storage.BookRepository, searcher *search.Searcher, opts ...Option) (*Server, error) {
	if books == nil {
		return nil, ErrBookRepositoryRequired
	}
	if searcher == nil {
		return nil, ErrSearcherRequired
	}

	s := &Server{
		books:    books,
		searcher: searcher,
		logger:   slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// RegisterRoutes registers all API endpoints with a new ServeMux.
func (s *Server) RegisterRoutes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/subjects", s.handleSubjects)
	mux.HandleFunc("GET /api/pdf-titles/{subject}", s.handleTitles)
	mux.HandleFunc("GET /api/pdf-titles/{$}", s.handleTitles)
	mux.HandleFunc("POST /api/searchquery", s.handleSearch)
	return mux
}

// ListenAndServe serves the API on addr until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.RegisterRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// SearchRequest is the body of POST /api/searchquery.
type SearchRequest struct {
	SelectedSubject string   `json:"selectedSubject"`
	SearchQuery     string   `json:"searchQuery"`
	PdfBookTitles   []string `json:"pdfBookTitles"`
}

// SearchResponse is the body of a successful search.
type SearchResponse struct {
	Message string               `json:"message"`
	Results core.SearchResultSet `json:"results"`
	Total   int                  `json:"total"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := s.books.ListDistinctSubjects(r.Context())
	if err != nil {
		s.writeFailure(w, "error listing subjects", err, "Failed to fetch subjects")
		return
	}
	writeJSON(w, http.StatusOK, subjects)
}

func (s *Server) handleTitles(w http.ResponseWriter, r *http.Request) {
	subject := r.PathValue("subject")
	if subject == "" {
		writeError(w, http.StatusBadRequest, "Subject parameter is required")
		return
	}
	if err := core.ValidateSubject(subject); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	titles, err := s.books.ListBookTitlesBySubject(r.Context(), subject)
	if err != nil {
		s.writeFailure(w, "error listing titles", err, "Failed to fetch PDF titles", "subject", subject)
		return
	}
	writeJSON(w, http.StatusOK, titles)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if req.SelectedSubject == "" || req.SearchQuery == "" || req.PdfBookTitles == nil {
		writeError(w, http.StatusBadRequest, "Missing selectedSubject, searchQuery, or pdfBookTitles")
		return
	}
	if len(req.PdfBookTitles) > search.MaxBookTitles {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Too many titles, max %d allowed", search.MaxBookTitles))
		return
	}

	results, err := s.searcher.Search(r.Context(), req.SelectedSubject, req.SearchQuery, req.PdfBookTitles)
	if err != nil {
		s.writeFailure(w, "error processing search", err, "Failed to process search",
			"subject", req.SelectedSubject, "query", req.SearchQuery)
		return
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		Message: "Search completed",
		Results: results,
		Total:   totalMatches(results),
	})
}

// writeFailure maps err to a status code and writes it. Validation errors
// are echoed to the client; anything else is logged and replaced by message.
func (s *Server) writeFailure(w http.ResponseWriter, logMsg string, err error, message string, attrs ...any) {
	switch {
	case errors.Is(err, core.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrNotConfigured):
		s.logger.Error(logMsg, append(attrs, "err", err)...)
		writeError(w, http.StatusServiceUnavailable, "Database unavailable")
	case errors.Is(err, context.Canceled):
		s.logger.Debug(logMsg, append(attrs, "err", err)...)
	default:
		s.logger.Error(logMsg, append(attrs, "err", err)...)
		writeError(w, http.StatusInternalServerError, message)
	}
}

// totalMatches returns the number of page matches across all books.
func totalMatches(results core.SearchResultSet) int {
	total := 0
	for _, matches := range results {
		total += len(matches)
	}
	return total
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}
