package http

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"

	"screening-quiz-service/internal/app"
	"screening-quiz-service/internal/domain"
	"screening-quiz-service/internal/ingest"
)

const maxUploadBytes = 10 << 20 // 10MB, same limit as the upload form

// Handler exposes the quiz service over REST plus a websocket result feed.
type Handler struct {
	service   *app.QuizService
	source    func() string
	adminUser string
	adminPass string
	upgrader  websocket.Upgrader
}

func NewHandler(service *app.QuizService, source func() string, adminUser, adminPass string) *Handler {
	return &Handler{
		service:   service,
		source:    source,
		adminUser: adminUser,
		adminPass: adminPass,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Routes builds the router with logging, recovery, and CORS middleware.
func (h *Handler) Routes(corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	if len(corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   corsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", h.health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/applications", h.listApplications)
		r.Get("/questions/{applicationID}", h.sampleQuestions)
		r.Get("/question-count/{applicationID}", h.questionCount)
		r.Post("/quiz/start", h.startQuiz)
		r.Post("/quiz-results", h.submitQuiz)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAdmin)
			r.Post("/applications", h.createApplication)
			r.Put("/applications/{applicationID}", h.updateApplication)
			r.Post("/upload-questions", h.uploadQuestions)
			r.Get("/quiz-results", h.listResults)
			r.Get("/quiz-results/stats", h.resultStats)
			r.Get("/quiz-results/{applicationID}", h.resultsForApplication)
			r.Delete("/quiz-results", h.clearResults)
			r.Get("/admin/dashboard", h.dashboard)
		})
	})

	r.Get("/ws/results", h.serveResultFeed)
	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"source": h.source(),
	})
}

func (h *Handler) listApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.service.Applications(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

func (h *Handler) createApplication(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string `json:"name"`
		Description  string `json:"description"`
		MaxQuestions int    `json:"maxQuestions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	created, err := h.service.CreateApplication(r.Context(), domain.Application{
		Name:         req.Name,
		Description:  req.Description,
		MaxQuestions: req.MaxQuestions,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) updateApplication(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "applicationID")
	if err != nil {
		http.Error(w, "invalid application id", http.StatusBadRequest)
		return
	}
	var update domain.ApplicationUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	updated, err := h.service.UpdateApplication(r.Context(), id, update)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) sampleQuestions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "applicationID")
	if err != nil {
		http.Error(w, "invalid application id", http.StatusBadRequest)
		return
	}
	count := 0
	if raw := r.URL.Query().Get("count"); raw != "" {
		count, err = strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid count", http.StatusBadRequest)
			return
		}
	}
	questions, err := h.service.SampleQuestions(r.Context(), id, count)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (h *Handler) questionCount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "applicationID")
	if err != nil {
		http.Error(w, "invalid application id", http.StatusBadRequest)
		return
	}
	count, err := h.service.QuestionCount(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (h *Handler) startQuiz(w http.ResponseWriter, r *http.Request) {
	var req app.StartQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	started, err := h.service.StartQuiz(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, started)
}

func (h *Handler) submitQuiz(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string            `json:"sessionId"`
		Answers   map[string]string `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		http.Error(w, "sessionId is required", http.StatusBadRequest)
		return
	}

	answers := make(map[int64]domain.Choice, len(req.Answers))
	for rawID, rawChoice := range req.Answers {
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			continue
		}
		choice, ok := domain.ParseChoice(rawChoice)
		if !ok {
			// Unknown labels are treated as unanswered, not rejected.
			continue
		}
		answers[id] = choice
	}

	result, err := h.service.SubmitQuiz(r.Context(), req.SessionID, answers)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) listResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.ListResults(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) resultsForApplication(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "applicationID")
	if err != nil {
		http.Error(w, "invalid application id", http.StatusBadRequest)
		return
	}
	results, err := h.service.ResultsFor(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) resultStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) clearResults(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.service.ClearResults(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

func (h *Handler) uploadQuestions(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	applicationID, err := strconv.ParseInt(r.FormValue("applicationId"), 10, 64)
	if err != nil {
		http.Error(w, "applicationId is required", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("csvFile")
	if err != nil {
		http.Error(w, "csvFile is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") &&
		!strings.HasPrefix(header.Header.Get("Content-Type"), "text/csv") {
		http.Error(w, "only CSV files are allowed", http.StatusBadRequest)
		return
	}

	report, err := ingest.Parse(file)
	if err != nil {
		h.writeError(w, err)
		return
	}
	imported, err := h.service.ImportQuestions(r.Context(), applicationID, report.Questions)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "questions imported",
		"count":   imported,
		"skipped": report.Skipped,
	})
}

// requireAdmin guards the admin surface with the configured credentials.
// With no password configured the check is disabled, matching fallback-only
// deployments that have nothing durable to protect.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.adminAuthorized(r) {
			w.Header().Set("WWW-Authenticate", `Basic realm="admin"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) adminAuthorized(r *http.Request) bool {
	if h.adminPass == "" {
		return true
	}
	user, pass, ok := r.BasicAuth()
	if !ok {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(h.adminUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(h.adminPass)) == 1
	return userOK && passOK
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrApplicationNotFound), errors.Is(err, domain.ErrSessionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrDuplicateName):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrNoQuestions):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrInvalidResult),
		errors.Is(err, domain.ErrInvalidSampleSize),
		errors.Is(err, domain.ErrEmptyImport):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrStoreUnavailable):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		log.Printf("internal error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
