package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/chat"
	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/models"
	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/queue"
	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/service"
	"github.com/KOFI-GYIMAH/team-activity-corpus/pkg/errors"
	"github.com/KOFI-GYIMAH/team-activity-corpus/pkg/logger"
	"github.com/gorilla/mux"
)

const (
	defaultSearchK = 5
	maxSearchK     = 50
)

type ReinforcementStore interface {
	Users() ([]string, error)
	Get(username string) (*models.ReinforcementFile, error)
	Add(username string, r models.Reinforcement) (*models.ReinforcementFile, error)
	Update(username string, id int, r models.Reinforcement) (*models.ReinforcementFile, error)
	Delete(username string, id int) (*models.ReinforcementFile, error)
}

type CorpusIndex interface {
	Search(ctx context.Context, query string, topK int) ([]models.Document, error)
	Stats(ctx context.Context) (models.CorpusStats, error)
}

type Refresher interface {
	Trigger(reason string) bool
	LastReport() (service.Report, bool)
}

type RefreshPublisher interface {
	PublishRefreshRequest(ctx context.Context, reason string) (queue.RefreshRequest, error)
}

type Asker interface {
	Ask(ctx context.Context, question string) (chat.Answer, error)
}

type CorpusHandler struct {
	store     ReinforcementStore
	index     CorpusIndex
	refresher Refresher
	publisher RefreshPublisher
	asker     Asker
}

func NewCorpusHandler(store ReinforcementStore, index CorpusIndex, refresher Refresher, asker Asker) *CorpusHandler {
	return &CorpusHandler{
		store:     store,
		index:     index,
		refresher: refresher,
		asker:     asker,
	}
}

// * WithPublisher routes refresh requests through the queue instead of the in-process worker
func (h *CorpusHandler) WithPublisher(p RefreshPublisher) *CorpusHandler {
	h.publisher = p
	return h
}

func (h *CorpusHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/users", h.listUsers).Methods("GET")
	r.HandleFunc("/users/{username}/reinforcements", h.getReinforcements).Methods("GET")
	r.HandleFunc("/users/{username}/reinforcements", h.addReinforcement).Methods("POST")
	r.HandleFunc("/users/{username}/reinforcements/{id}", h.updateReinforcement).Methods("PUT")
	r.HandleFunc("/users/{username}/reinforcements/{id}", h.deleteReinforcement).Methods("DELETE")
	r.HandleFunc("/corpus/refresh", h.refreshCorpus).Methods("POST")
	r.HandleFunc("/corpus/report", h.lastReport).Methods("GET")
	r.HandleFunc("/corpus/search", h.searchCorpus).Methods("GET")
	r.HandleFunc("/corpus/stats", h.corpusStats).Methods("GET")
	r.HandleFunc("/chat", h.ask).Methods("POST")
	r.HandleFunc("/chat/topics", h.topics).Methods("GET")
}

func writeSuccess(w http.ResponseWriter, status int, data any, message string) {
	resp := APIResponse{
		Status:  "success",
		Data:    data,
		Message: message,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.Parse("Invalid request body", "Request body must be valid JSON", err)
	}
	return nil
}

func pathID(r *http.Request) (int, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, errors.Parse("Invalid reinforcement id", "id must be a positive integer, got "+raw, err)
	}
	return id, nil
}

// listUsers godoc
// @Summary List team members
// @Description Lists the user directories found under the documents root
// @Tags Users
// @Produce json
// @Success 200 {object} APIResponse
// @Failure 500 {object} errors.HTTPErrorResponse
// @Router /users [get]
func (h *CorpusHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.Users()
	if err != nil {
		errors.WriteHTTPError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, users, "Successfully fetched users")
}

// getReinforcements godoc
// @Summary Get reinforcements
// @Description Returns the reinforcement file of a team member, creating an empty one when missing
// @Tags Reinforcements
// @Produce json
// @Param username path string true "Team member"
// @Success 200 {object} models.ReinforcementFile
// @Failure 400 {object} errors.HTTPErrorResponse
// @Router /users/{username}/reinforcements [get]
func (h *CorpusHandler) getReinforcements(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	file, err := h.store.Get(username)
	if err != nil {
		errors.WriteHTTPError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, file, "Successfully fetched reinforcements")
}

// addReinforcement godoc
// @Summary Add reinforcement
// @Tags Reinforcements
// @Accept json
// @Produce json
// @Param username path string true "Team member"
// @Param reinforcement body ReinforcementRequest true "Reinforcement to add"
// @Success 201 {object} models.ReinforcementFile
// @Failure 400 {object} errors.HTTPErrorResponse
// @Router /users/{username}/reinforcements [post]
func (h *CorpusHandler) addReinforcement(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	var req ReinforcementRequest
	if err := decodeBody(r, &req); err != nil {
		errors.WriteHTTPError(w, err)
		return
	}

	file, err := h.store.Add(username, req.toModel())
	if err != nil {
		errors.WriteHTTPError(w, err)
		return
	}

	logger.Info("Added reinforcement for %s", username)
	writeSuccess(w, http.StatusCreated, file, "Reinforcement added")
}

// updateReinforcement godoc
// @Summary Update reinforcement
// @Tags Reinforcements
// @Accept json
// @Produce json
// @Param username path string true "Team member"
// @Param id path int true "Reinforcement id"
// @Param reinforcement body ReinforcementRequest true "New values"
// @Success 200 {object} models.ReinforcementFile
// @Failure 400 {object} errors.HTTPErrorResponse
// @Failure 404 {object} errors.HTTPErrorResponse
// @Router /users/{username}/reinforcements/{id} [put]
func (h *CorpusHandler) updateReinforcement(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	id, err := pathID(r)
	if err != nil {
		errors.WriteHTTPError(w, err)
		return
	}

	var req ReinforcementRequest
	if err := decodeBody(r, &req); err != nil {
		errors.WriteHTTPError(w, err)
		return
	}

	file, err := h.store.Update(username, id, req.toModel())
	if err != nil {
		errors.WriteHTTPError(w, err)
		return
	}

	logger.Info("Updated reinforcement %d for %s", id, username)
	writeSuccess(w, http.StatusOK, file, "Reinforcement updated")
}

// deleteReinforcement godoc
// @Summary Delete reinforcement
// @Tags Reinforcements
// @Produce json
// @Param username path string true "Team member"
// @Param id path int true "Reinforcement id"
// @Success 200 {object} models.ReinforcementFile
// @Failure 404 {object} errors.HTTPErrorResponse
// @Router /users/{username}/reinforcements/{id} [delete]
func (h *CorpusHandler) deleteReinforcement(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	id, err := pathID(r)
	if err != nil {
		errors.WriteHTTPError(w, err)
		return
	}

	file, err := h.store.Delete(username, id)
	if err != nil {
		errors.WriteHTTPError(w, err)
		return
	}

	logger.Info("Deleted reinforcement %d for %s", id, username)
	writeSuccess(w, http.StatusOK, file, "Reinforcement deleted")
}

// refreshCorpus godoc
// @Summary Refresh corpus
// @Description Requests a reload of team notes and GitHub activity. The body is optional
// @Tags Corpus
// @Accept json
// @Produce json
// @Param request body RefreshBody false "Reason for the refresh"
// @Success 202 {object} RefreshResponse
// @Failure 400 {object} errors.HTTPErrorResponse
// @Router /corpus/refresh [post]
func (h *CorpusHandler) refreshCorpus(w http.ResponseWriter, r *http.Request) {
	var body RefreshBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && err != io.EOF {
		errors.WriteHTTPError(w, errors.Parse("Invalid request body", "Request body must be valid JSON", err))
		return
	}

	reason := strings.TrimSpace(body.Reason)
	if reason == "" {
		reason = "api"
	}

	// * Prefer the queue so every instance sees the request; fall back to the local worker
	if h.publisher != nil {
		req, err := h.publisher.PublishRefreshRequest(r.Context(), reason)
		if err == nil {
			writeSuccess(w, http.StatusAccepted, RefreshResponse{RequestID: req.ID, Reason: reason, Queued: true, Via: "queue"}, "Refresh requested")
			return
		}
		logger.Warn("publishing refresh request failed, using local worker: %v", err)
	}

	queued := h.refresher.Trigger(reason)
	message := "Refresh requested"
	if !queued {
		message = "A refresh is already pending"
	}
	writeSuccess(w, http.StatusAccepted, RefreshResponse{Reason: reason, Queued: queued, Via: "worker"}, message)
}

// lastReport godoc
// @Summary Last load report
// @Tags Corpus
// @Produce json
// @Success 200 {object} service.Report
// @Failure 404 {object} errors.HTTPErrorResponse
// @Router /corpus/report [get]
func (h *CorpusHandler) lastReport(w http.ResponseWriter, r *http.Request) {
	report, ok := h.refresher.LastReport()
	if !ok {
		errors.WriteHTTPError(w, errors.NotFound("No load report", "The corpus has not been loaded yet", nil))
		return
	}

	writeSuccess(w, http.StatusOK, report, "Successfully fetched load report")
}

// searchCorpus godoc
// @Summary Search corpus
// @Description Full-text search over indexed documents
// @Tags Corpus
// @Produce json
// @Param q query string true "Query"
// @Param k query int false "Maximum results" default(5)
// @Success 200 {object} SearchResponse
// @Failure 400 {object} errors.HTTPErrorResponse
// @Router /corpus/search [get]
func (h *CorpusHandler) searchCorpus(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		errors.WriteHTTPError(w, errors.Parse("Missing query", "Query parameter q is required", nil))
		return
	}

	k, _ := strconv.Atoi(r.URL.Query().Get("k"))
	if k < 1 || k > maxSearchK {
		k = defaultSearchK
	}

	docs, err := h.index.Search(r.Context(), query, k)
	if err != nil {
		errors.WriteHTTPError(w, err)
		return
	}

	if docs == nil {
		docs = []models.Document{}
	}

	logger.Debug("search %q returned %d documents", query, len(docs))
	writeSuccess(w, http.StatusOK, SearchResponse{Query: query, Results: docs}, "Successfully searched corpus")
}

// corpusStats godoc
// @Summary Corpus statistics
// @Tags Corpus
// @Produce json
// @Success 200 {object} models.CorpusStats
// @Failure 500 {object} errors.HTTPErrorResponse
// @Router /corpus/stats [get]
func (h *CorpusHandler) corpusStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.index.Stats(r.Context())
	if err != nil {
		errors.WriteHTTPError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, stats, "Successfully fetched corpus stats")
}

// ask godoc
// @Summary Ask about the team
// @Description Answers a question from the closest corpus documents
// @Tags Chat
// @Accept json
// @Produce json
// @Param request body ChatRequest true "Question"
// @Success 200 {object} chat.Answer
// @Failure 400 {object} errors.HTTPErrorResponse
// @Failure 502 {object} errors.HTTPErrorResponse
// @Failure 503 {object} errors.HTTPErrorResponse
// @Router /chat [post]
func (h *CorpusHandler) ask(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decodeBody(r, &req); err != nil {
		errors.WriteHTTPError(w, err)
		return
	}

	answer, err := h.asker.Ask(r.Context(), req.Question)
	if err != nil {
		errors.WriteHTTPError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, answer, "Successfully answered question")
}

// topics godoc
// @Summary Chat topics
// @Tags Chat
// @Produce json
// @Success 200 {array} string
// @Router /chat/topics [get]
func (h *CorpusHandler) topics(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, chat.Topics(), "Successfully fetched topics")
}
