// Package handlers provides HTTP handlers for the web interface.
package handlers

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/alienxp03/arena/internal/core"
	"github.com/alienxp03/arena/internal/export"
	"github.com/alienxp03/arena/internal/ingest"
	"github.com/alienxp03/arena/internal/sanitize"
	"github.com/alienxp03/arena/internal/storage"
	"github.com/alienxp03/arena/internal/style"
	"github.com/alienxp03/arena/provider"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	// MaxRounds caps the rounds a visitor can request.
	MaxRounds = 10

	// DefaultDebateTimeout bounds a whole debate started over HTTP.
	DefaultDebateTimeout = 15 * time.Minute

	// DefaultMaxUploadBytes bounds a multipart debate form.
	DefaultMaxUploadBytes = 32 << 20

	noticeFailed     = "Failed to generate debate."
	noticeNoTopic    = "Please enter a debate topic."
	noticeUnbalanced = "Only one side provided documents. The debate was run anyway, but it may be unbalanced."
)

// Debater runs a debate and returns nil when it fails.
type Debater interface {
	RunDebate(ctx context.Context, req core.DebateRequest) *core.Result
}

// Options configures a Handler.
type Options struct {
	Engine   Debater
	Registry *provider.Registry
	Storage  storage.Storage

	// Affirmative and Negative label the participants in exports.
	Affirmative string
	Negative    string

	Style        string
	CustomStyles []style.Style

	DebateTimeout  time.Duration
	MaxUploadBytes int64

	// HealthCachePath persists provider health results. Empty keeps them
	// in memory.
	HealthCachePath string

	Logger *slog.Logger
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	engine    Debater
	registry  *provider.Registry
	storage   storage.Storage
	templates *template.Template
	health    *providerHealthCache
	logger    *slog.Logger
	opts      Options
}

// New creates a new Handler.
func New(opts Options) *Handler {
	if opts.DebateTimeout <= 0 {
		opts.DebateTimeout = DefaultDebateTimeout
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.Registry == nil {
		opts.Registry = provider.NewRegistry()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	funcMap := template.FuncMap{
		"nl2br": func(s string) template.HTML {
			escaped := template.HTMLEscapeString(s)
			return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
		},
	}
	tmpl := template.Must(template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html"))

	return &Handler{
		engine:    opts.Engine,
		registry:  opts.Registry,
		storage:   opts.Storage,
		templates: tmpl,
		health:    newProviderHealthCache(opts.HealthCachePath, providerHealthCacheTTL),
		logger:    logger,
		opts:      opts,
	}
}

// Routes returns the router serving the UI and the JSON API.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)

	r.Get("/", h.handleIndex)
	r.Post("/debate", h.handleDebate)
	r.Post("/reset", h.handleReset)
	r.Get("/export/{format}", h.handleExport)

	r.Route("/api", func(r chi.Router) {
		r.Post("/debates", h.handleAPICreateDebate)
		r.Get("/providers", h.handleAPIProviders)
		r.Get("/providers/health", h.handleAPIProvidersHealth)
		r.Get("/styles", h.handleAPIListStyles)
	})
	return r
}

// Page handlers

type indexData struct {
	Session   *storage.Session
	Result    *core.Result
	Notice    string
	MaxRounds int
	Formats   []export.Format
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := indexData{
		Session:   sess,
		Result:    sess.Result(),
		Notice:    sess.Notice,
		MaxRounds: MaxRounds,
		Formats:   export.Formats(),
	}

	if sess.Notice != "" {
		sess.Notice = ""
		if err := h.storage.UpdateSession(sess); err != nil {
			h.logger.Warn("Failed to clear notice", "session", core.ShortID(sess.ID), "error", err)
		}
	}

	h.render(w, "index.html", data)
}

// Actions

func (h *Handler) handleDebate(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.opts.MaxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		http.Error(w, "Invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}

	topic := strings.TrimSpace(r.FormValue("topic"))
	rounds := parseRounds(r.FormValue("rounds"))

	sess.Reset()
	sess.Topic = topic
	sess.Rounds = rounds

	if topic == "" {
		sess.Notice = noticeNoTopic
		h.saveAndRedirect(w, r, sess)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.opts.DebateTimeout)
	defer cancel()

	affFiles, err := uploadedFiles(r.MultipartForm, "affirmative_files")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	negFiles, err := uploadedFiles(r.MultipartForm, "negative_files")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	req := core.NewDebateRequest(topic, ingest.ExtractAll(ctx, affFiles), ingest.ExtractAll(ctx, negFiles))
	req.Rounds = rounds
	sess.AffirmativeDoc, sess.NegativeDoc = req.AffirmativeDoc, req.NegativeDoc

	if !req.DocumentsBalanced() {
		sess.Notice = noticeUnbalanced
	}

	sess.Started = true
	sess.Status = core.StatusRunning
	if err := h.storage.UpdateSession(sess); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	log := h.logger.With("session", core.ShortID(sess.ID))
	log.Info("Running debate", "topic", topic, "rounds", rounds,
		"affirmative_files", len(affFiles), "negative_files", len(negFiles))

	result := h.engine.RunDebate(ctx, req)
	if result == nil {
		sess.Started = false
		sess.Status = core.StatusFailed
		sess.Notice = noticeFailed
		h.saveAndRedirect(w, r, sess)
		return
	}

	result = sanitize.Result(result)
	sess.Transcript = result.Transcript
	sess.Summary = result.Summary
	sess.Finished = true
	sess.Status = core.StatusCompleted
	h.saveAndRedirect(w, r, sess)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	sess.Reset()
	h.saveAndRedirect(w, r, sess)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")

	sess, err := h.session(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	result := sess.Result()
	if result == nil {
		http.Error(w, "No finished debate to export", http.StatusNotFound)
		return
	}

	exporter, err := export.GetExporter(export.Format(format))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	doc := &export.Document{
		Result:      result,
		Affirmative: h.opts.Affirmative,
		Negative:    h.opts.Negative,
		Style:       h.opts.Style,
		CreatedAt:   sess.UpdatedAt,
	}
	filename := export.GenerateFilename(doc, exporter.FileExtension())

	switch exporter.FileExtension() {
	case "pdf":
		w.Header().Set("Content-Type", "application/pdf")
	case "json":
		w.Header().Set("Content-Type", "application/json")
	default:
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))

	if err := exporter.Export(doc, w); err != nil {
		h.logger.Error("Export failed", "session", core.ShortID(sess.ID), "format", format, "error", err)
		http.Error(w, "Export failed", http.StatusInternalServerError)
	}
}

func (h *Handler) saveAndRedirect(w http.ResponseWriter, r *http.Request, sess *storage.Session) {
	if err := h.storage.UpdateSession(sess); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// parseRounds reads the rounds field, falling back to the default and
// clamping to [0, MaxRounds].
func parseRounds(val string) int {
	rounds, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return core.DefaultRounds
	}
	return min(max(rounds, 0), MaxRounds)
}

func uploadedFiles(form *multipart.Form, field string) ([]ingest.File, error) {
	if form == nil {
		return nil, nil
	}
	headers := form.File[field]
	files := make([]ingest.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read upload %s: %w", fh.Filename, err)
		}
		files = append(files, ingest.File{
			Name:      fh.Filename,
			MediaType: fh.Header.Get("Content-Type"),
			Data:      data,
		})
	}
	return files, nil
}

// Helpers

func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("Template error", "template", name, "error", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

func (h *Handler) json(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
