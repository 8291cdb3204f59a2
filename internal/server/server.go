// Package server serves a single form file over HTTP for local previewing:
// the three HTML surfaces, the export document, the submission schema and a
// POST endpoint that validates answers without storing them.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/renderers/html"
	"github.com/goliatone/go-formbuilder/pkg/submission"
	"github.com/goliatone/go-formbuilder/pkg/transfer"
)

// maxBodyBytes caps POST bodies.
const maxBodyBytes = 1 << 20

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAction overrides the submit URL of the public surface. The default
// posts back to /public.
func WithAction(action string) Option {
	return func(s *Server) {
		if strings.TrimSpace(action) != "" {
			s.action = action
		}
	}
}

// WithClock fixes the submission timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTheme renders the HTML surfaces through a go-theme selector. Requests
// may pick another theme or variant with ?theme= and ?variant=.
func WithTheme(selector theme.ThemeSelector, name, variant string) Option {
	return func(s *Server) {
		s.themes = selector
		s.themeName = name
		s.themeVariant = variant
	}
}

// Server renders one form. It never mutates the form, so it is safe to share
// across requests.
type Server struct {
	form     model.Form
	registry *render.Registry
	logger   *log.Logger
	action   string
	now      func() time.Time
	router   chi.Router

	themes       theme.ThemeSelector
	themeName    string
	themeVariant string
}

// New builds the router for form.
func New(form model.Form, options ...Option) (*Server, error) {
	s := &Server{
		form:   form.Clone(),
		logger: log.Default(),
		action: "/public",
		now:    time.Now,
	}
	for _, option := range options {
		if option != nil {
			option(s)
		}
	}

	htmlOptions := []html.Option{html.WithDocument(true)}
	if s.themes != nil {
		htmlOptions = append(htmlOptions, html.WithThemeSelector(s.themes, s.themeName, s.themeVariant))
	}
	renderers, err := html.All(htmlOptions...)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	s.registry = render.NewRegistry(renderers...)
	s.router = s.routes()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/preview", http.StatusFound)
	})
	for _, surface := range html.Surfaces() {
		r.Get("/"+string(surface), s.handleSurface(surface))
	}
	r.With(middleware.RequestSize(maxBodyBytes)).Post("/public", s.handleSubmit)
	r.Get("/export.json", s.handleExport)
	r.Get("/schema.json", s.handleSchema)
	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServerFS(html.AssetsFS())))
	return r
}

func (s *Server) handleSurface(surface html.Surface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := render.RenderOptions{}
		if surface == html.SurfacePublic {
			opts.Action = s.action
		}
		s.render(w, r, surface, http.StatusOK, opts)
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, surface html.Surface, status int, opts render.RenderOptions) {
	if opts.Theme == nil {
		cfg, err := s.requestTheme(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, transfer.Message{Message: "Unknown theme", Issues: []string{err.Error()}})
			return
		}
		opts.Theme = cfg
	}

	out, contentType, err := s.registry.Render(r.Context(), string(surface), s.form, opts)
	if err != nil {
		s.logger.Error("render failed", "surface", surface, "err", err)
		writeJSON(w, http.StatusInternalServerError, transfer.ErrorMessage(err))
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(out)
}

// requestTheme resolves ?theme= and ?variant= overrides. Nil means the
// renderer default applies.
func (s *Server) requestTheme(r *http.Request) (*theme.RendererConfig, error) {
	query := r.URL.Query()
	name, variant := strings.TrimSpace(query.Get("theme")), strings.TrimSpace(query.Get("variant"))
	if s.themes == nil || (name == "" && variant == "") {
		return nil, nil
	}
	if name == "" {
		name = s.themeName
	}
	if variant == "" {
		variant = s.themeVariant
	}
	return render.SelectTheme(s.themes, name, variant, s.form.ThemeColor, html.TemplatePartials())
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, transfer.Message{Message: "Invalid form body", Issues: []string{err.Error()}})
		return
	}
	values := ValuesFromForm(s.form, r.PostForm)

	// Local previews accept answers for drafts too.
	form := s.form.Clone()
	form.IsPublished = true
	response, err := submission.NewResponse(form, values, submission.Meta{
		IPAddress: clientIP(r.RemoteAddr),
		UserAgent: r.UserAgent(),
	}, submission.WithClock(s.now))

	var invalid *submission.Error
	switch {
	case errors.As(err, &invalid):
		opts := render.RenderOptions{Values: values, Errors: invalid.Fields, Action: s.action}
		if messages := invalid.Fields[submission.FormLevelKey]; len(messages) > 0 {
			opts.FormErrors = messages
		}
		s.logger.Debug("submission rejected", "fields", invalid.FieldIDs())
		s.render(w, r, html.SurfacePublic, http.StatusUnprocessableEntity, opts)
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, transfer.ErrorMessage(err))
	default:
		s.logger.Info("submission accepted", "response", response.ID)
		writeJSON(w, http.StatusOK, response)
	}
}

func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	data, err := transfer.MarshalForm(s.form)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, transfer.ErrorMessage(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", transfer.Filename(s.form.Title)))
	_, _ = w.Write(data)
}

func (s *Server) handleSchema(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, submission.Schema(s.form))
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// ValuesFromForm picks the answers for the form's visible fields out of a
// decoded form body. Multi-value fields keep every submitted value; the rest
// keep the first. Other keys, including the hidden identity inputs, are
// dropped.
func ValuesFromForm(form model.Form, body map[string][]string) map[string]any {
	values := make(map[string]any)
	for _, field := range submission.Visible(form) {
		submitted, ok := body[field.ID]
		if !ok || len(submitted) == 0 {
			continue
		}
		if field.Type.IsMultiValue() {
			values[field.ID] = append([]string(nil), submitted...)
			continue
		}
		values[field.ID] = submitted[0]
	}
	return values
}

func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(payload)
}
