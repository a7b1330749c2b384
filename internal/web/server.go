// Package web serves the consultation form and its JSON API.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/bimmerbailey/soudan/internal/consult"
	"github.com/bimmerbailey/soudan/internal/prompt"
	"github.com/gorilla/mux"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// User-facing messages on the form page.
const (
	emptyInputWarning = "テキストを入力してください。"
	upstreamFailure   = "回答の生成に失敗しました。時間をおいて再度お試しください。"
)

// Server wires the form page, the JSON API and operational endpoints.
type Server struct {
	asker   consult.Asker
	metrics *Metrics
	logger  *slog.Logger
}

// NewServer returns a Server. metrics may be nil, in which case a fresh set is created.
func NewServer(asker consult.Asker, metrics *Metrics, logger *slog.Logger) *Server {
	if metrics == nil {
		metrics = NewMetrics()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{asker: asker, metrics: metrics, logger: logger}
}

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(s.accessLog)

	router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	router.HandleFunc("/", s.handleSubmit).Methods(http.MethodPost)
	router.HandleFunc("/api/consult", s.handleAPIConsult).Methods(http.MethodPost)
	router.HandleFunc("/api/personas", s.handleAPIPersonas).Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	return router
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type optionView struct {
	ID      prompt.Persona
	Label   string
	Checked bool
}

type pageData struct {
	Options  []optionView
	Question string
	Warning  string
	Error    string
	Answer   *consult.Answer

	// AnswerHTML is Answer.Text rendered from markdown.
	AnswerHTML template.HTML
}

func newPageData(selected prompt.Persona) pageData {
	// Unrecognized personas leave every option unchecked.
	opts := prompt.Options()
	views := make([]optionView, len(opts))
	for i, o := range opts {
		views[i] = optionView{ID: o.ID, Label: o.Label, Checked: o.ID == selected}
	}
	return pageData{Options: views}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, http.StatusOK, newPageData(prompt.CareerAdvisor))
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.logger.Warn("failed to parse form", "error", err)
		data := newPageData(prompt.CareerAdvisor)
		data.Error = "フォームの内容を読み取れませんでした。"
		s.renderPage(w, http.StatusBadRequest, data)
		return
	}

	persona := prompt.Parse(r.PostFormValue("persona"))
	question := r.PostFormValue("question")

	data := newPageData(persona)
	data.Question = question

	answer, status := s.runConsultation(r.Context(), persona, question)
	switch status {
	case http.StatusOK:
		data.Answer = answer
		data.AnswerHTML = s.renderMarkdown(answer.Text)
	case http.StatusUnprocessableEntity:
		data.Warning = emptyInputWarning
	default:
		data.Error = upstreamFailure
	}

	s.renderPage(w, status, data)
}

type consultRequest struct {
	Persona  string `json:"persona"`
	Question string `json:"question"`
}

func (s *Server) handleAPIConsult(w http.ResponseWriter, r *http.Request) {
	var req consultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	answer, status := s.runConsultation(r.Context(), prompt.Parse(req.Persona), req.Question)
	switch status {
	case http.StatusOK:
		s.writeJSONResponse(w, http.StatusOK, answer)
	case http.StatusUnprocessableEntity:
		s.writeErrorResponse(w, status, consult.ErrEmptyInput.Error())
	default:
		s.writeErrorResponse(w, status, "language model request failed")
	}
}

func (s *Server) handleAPIPersonas(w http.ResponseWriter, r *http.Request) {
	s.writeJSONResponse(w, http.StatusOK, prompt.Options())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// runConsultation runs one consultation and maps the outcome to an HTTP status.
func (s *Server) runConsultation(ctx context.Context, persona prompt.Persona, question string) (*consult.Answer, int) {
	start := time.Now()
	answer, err := s.asker.Ask(ctx, persona, question)
	elapsed := time.Since(start)

	switch {
	case err == nil:
		s.metrics.observe(persona, outcomeAnswered, elapsed)
		return answer, http.StatusOK
	case errors.Is(err, consult.ErrEmptyInput):
		s.metrics.observe(persona, outcomeEmptyInput, elapsed)
		return nil, http.StatusUnprocessableEntity
	default:
		s.metrics.observe(persona, outcomeUpstreamError, elapsed)
		s.logger.Error("consultation failed", "persona", string(persona), "error", err)
		return nil, http.StatusBadGateway
	}
}

func (s *Server) renderPage(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		s.logger.Error("failed to render page", "error", err)
	}
}

func (s *Server) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	s.writeJSONResponse(w, statusCode, map[string]string{"error": message})
}
