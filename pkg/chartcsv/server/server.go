// Package server implements the endpoint the "Download CSV" action posts to.
// It echoes the posted CSV back as a downloadable file.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

// DefaultMaxBodyBytes bounds the size of a posted form.
const DefaultMaxBodyBytes = 10 << 20

// Problem is an RFC 7807 problem details response.
type Problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	Trace  string `json:"trace_id,omitempty"`
}

// Config configures the download handler.
type Config struct {
	// MaxBodyBytes bounds the posted form size (0 uses DefaultMaxBodyBytes).
	MaxBodyBytes int64
	// Logger receives request logs (nil uses slog.Default()).
	Logger *slog.Logger
}

// downloadForm is the payload posted by the download action.
type downloadForm struct {
	CSV      string `validate:"required"`
	Filename string `validate:"max=255"`
}

// Handler serves CSV downloads.
type Handler struct {
	validate     *validator.Validate
	logger       *slog.Logger
	maxBodyBytes int64
}

// NewHandler creates a download handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	return &Handler{
		validate:     validator.New(),
		logger:       logger.With(slog.String("component", "csv_download")),
		maxBodyBytes: maxBody,
	}
}

// Routes returns the router of the handler.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.PlainText(w, r, "ok")
	})
	r.Post("/csv", h.download)
	return r
}

// download responds with the posted CSV as an attachment.
func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.problem(w, r, http.StatusRequestEntityTooLarge, "Payload Too Large",
				fmt.Sprintf("request body exceeds %d bytes", h.maxBodyBytes))
			return
		}
		h.problem(w, r, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	form := downloadForm{
		CSV:      r.PostForm.Get("csv"),
		Filename: r.PostForm.Get("filename"),
	}
	if err := h.validate.Struct(form); err != nil {
		h.problem(w, r, http.StatusBadRequest, "Bad Request", validationDetail(err))
		return
	}

	name := AttachmentName(form.Filename)
	h.logger.Info("serving CSV download",
		slog.String("filename", name),
		slog.Int("bytes", len(form.CSV)),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(form.CSV)); err != nil {
		h.logger.Warn("failed to write response", slog.String("error", err.Error()))
	}
}

func (h *Handler) problem(w http.ResponseWriter, r *http.Request, status int, title, detail string) {
	render.Status(r, status)
	render.JSON(w, r, Problem{
		Type:   "about:blank",
		Title:  title,
		Status: status,
		Detail: detail,
		Trace:  middleware.GetReqID(r.Context()),
	})
}

// logRequests logs each request once it completes.
func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)))
	})
}

func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

// AttachmentName turns a chart filename into a safe .csv attachment name.
func AttachmentName(filename string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return r
		case r == ' ', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, filename)
	name = strings.Trim(name, " .")
	if name == "" {
		name = "data"
	}
	if !strings.HasSuffix(strings.ToLower(name), ".csv") {
		name += ".csv"
	}
	return name
}

// Server runs the download handler over HTTP.
type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

// New creates a server listening on addr.
func New(addr string, cfg Config) *Server {
	h := NewHandler(cfg)
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           h.Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: h.logger,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", slog.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}
