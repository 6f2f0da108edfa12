package main

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pageza/crave-decoder/generation"
	"github.com/pageza/crave-decoder/logging"
	"github.com/pageza/crave-decoder/mealdb"
	"github.com/pageza/crave-decoder/web"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type insightInterpreter interface {
	Interpret(ctx context.Context, query string) generation.Outcome
}

type recipeFinder interface {
	Lookup(ctx context.Context, name string) (mealdb.MealRecord, error)
}

// server wires the HTTP front door to the insight generator and the recipe
// lookup. It holds no per-request state.
type server struct {
	insights insightInterpreter
	recipes  recipeFinder
	log      logrus.FieldLogger
}

// resultPage is the data passed to the "result" template.
type resultPage struct {
	UserInput string
	Insight   generation.Insight
}

// routes registers the three endpoints. Unknown paths get the router's 404
// and wrong methods its 405.
func (s *server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.homeHandler).Methods(http.MethodGet)
	r.HandleFunc("/result", s.resultHandler).Methods(http.MethodPost)
	r.HandleFunc("/get_meal_details", s.mealDetailsHandler).Methods(http.MethodGet)
	return r
}

// handler is the full middleware chain around routes. Recoverer sits inside
// logRequests so the access log records a recovered panic's 500 under its
// request ID.
func (s *server) handler() http.Handler {
	return s.logRequests(middleware.Recoverer(s.routes()))
}

func (s *server) homeHandler(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, "index", nil)
}

// resultHandler interprets the submitted user_input and renders the result
// page. A form without the field is a 400; an empty field and upstream
// failures still render with a 200.
func (s *server) resultHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}
	values, ok := r.PostForm["user_input"]
	if !ok {
		logging.FromContext(r.Context()).Info("result posted without user_input")
		http.Error(w, "user_input is required", http.StatusBadRequest)
		return
	}
	input := ""
	if len(values) > 0 {
		input = strings.TrimSpace(values[0])
	}

	outcome := s.insights.Interpret(r.Context(), input)
	if !outcome.OK() {
		logging.FromContext(r.Context()).WithField("failure", outcome.Failure.Kind).Warn("rendering fallback insight")
	}

	renderPage(w, r, "result", resultPage{
		UserInput: input,
		Insight:   outcome.Insight,
	})
}

// mealDetailsHandler resolves ?meal= to a flattened recipe.
func (s *server) mealDetailsHandler(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("meal"))
	if name == "" {
		writeJSONError(w, r, mealdb.ErrNameRequired)
		return
	}

	record, err := s.recipes.Lookup(r.Context(), name)
	if err != nil {
		writeJSONError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, record)
}

// renderPage buffers the template so a failed render can still become a 500.
func renderPage(w http.ResponseWriter, r *http.Request, name string, data interface{}) {
	var buf bytes.Buffer
	if err := web.Render(&buf, name, data); err != nil {
		logging.FromContext(r.Context()).WithError(err).WithField("template", name).Error("render failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// writeJSONError maps recipe lookup errors to a status and {"error": msg}.
func writeJSONError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := err.Error()
	switch {
	case errors.Is(err, mealdb.ErrNameRequired):
		status, msg = http.StatusBadRequest, "Meal name required"
	case errors.Is(err, mealdb.ErrNoRecipes):
		status, msg = http.StatusNotFound, "No recipes available"
	}

	log := logging.FromContext(r.Context()).WithField("status", status)
	if status >= http.StatusInternalServerError {
		log.WithError(err).Error("recipe lookup failed")
	} else {
		log.Info(msg)
	}
	writeJSON(w, r, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).WithError(err).Error("encode response")
	}
}
