package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/chat"
	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/models"
	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/queue"
	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/reinforcement"
	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/service"
	"github.com/KOFI-GYIMAH/team-activity-corpus/pkg/errors"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockIndex struct {
	mock.Mock
}

func (m *MockIndex) Search(ctx context.Context, query string, topK int) ([]models.Document, error) {
	args := m.Called(ctx, query, topK)
	docs, _ := args.Get(0).([]models.Document)
	return docs, args.Error(1)
}

func (m *MockIndex) Stats(ctx context.Context) (models.CorpusStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.CorpusStats), args.Error(1)
}

type MockRefresher struct {
	mock.Mock
}

func (m *MockRefresher) Trigger(reason string) bool {
	return m.Called(reason).Bool(0)
}

func (m *MockRefresher) LastReport() (service.Report, bool) {
	args := m.Called()
	return args.Get(0).(service.Report), args.Bool(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishRefreshRequest(ctx context.Context, reason string) (queue.RefreshRequest, error) {
	args := m.Called(ctx, reason)
	return args.Get(0).(queue.RefreshRequest), args.Error(1)
}

type MockAsker struct {
	mock.Mock
}

func (m *MockAsker) Ask(ctx context.Context, question string) (chat.Answer, error) {
	args := m.Called(ctx, question)
	return args.Get(0).(chat.Answer), args.Error(1)
}

type fixture struct {
	root      string
	index     *MockIndex
	refresher *MockRefresher
	asker     *MockAsker
	handler   *CorpusHandler
	router    *mux.Router
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		root:      t.TempDir(),
		index:     new(MockIndex),
		refresher: new(MockRefresher),
		asker:     new(MockAsker),
	}
	f.handler = NewCorpusHandler(reinforcement.NewStore(f.root), f.index, f.refresher, f.asker)
	f.router = mux.NewRouter()
	f.handler.RegisterRoutes(f.router.PathPrefix("/v1").Subrouter())
	return f
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	require.NoError(t, json.Unmarshal(resp.Data, dst))
}

func errorRef(t *testing.T, rec *httptest.ResponseRecorder) string {
	var resp errors.HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.ErrorRef
}

func TestListUsers(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.MkdirAll(filepath.Join(f.root, "bob"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(f.root, "alice"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(f.root, ".git"), 0o755))

	rec := f.do(http.MethodGet, "/v1/users", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var users []string
	decodeData(t, rec, &users)
	assert.Equal(t, []string{"alice", "bob"}, users)
}

func TestReinforcementLifecycle(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/v1/users/alice/reinforcements", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var file models.ReinforcementFile
	decodeData(t, rec, &file)
	assert.Equal(t, "1.0", file.Version)
	assert.Empty(t, file.Reinforcements)

	rec = f.do(http.MethodPost, "/v1/users/alice/reinforcements", `{"category":"testing","description":"Add table tests","priority":"high"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	decodeData(t, rec, &file)
	require.Len(t, file.Reinforcements, 1)
	assert.Equal(t, 1, file.Reinforcements[0].ID)
	assert.Equal(t, "Add table tests", file.Reinforcements[0].Description)

	rec = f.do(http.MethodPut, "/v1/users/alice/reinforcements/1", `{"category":"testing","description":"Done","status":"closed"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &file)
	assert.Equal(t, "closed", file.Reinforcements[0].Status)
	assert.Equal(t, 1, file.Reinforcements[0].ID)

	rec = f.do(http.MethodDelete, "/v1/users/alice/reinforcements/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &file)
	assert.Empty(t, file.Reinforcements)

	_, err := os.Stat(filepath.Join(f.root, "alice", reinforcement.FileName))
	assert.NoError(t, err)
}

func TestReinforcementErrors(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
		wantRef    string
	}{
		{name: "unknown id", method: http.MethodDelete, target: "/v1/users/alice/reinforcements/9", wantStatus: http.StatusNotFound, wantRef: errors.RefNotFound},
		{name: "bad id", method: http.MethodPut, target: "/v1/users/alice/reinforcements/abc", body: `{}`, wantStatus: http.StatusBadRequest, wantRef: errors.RefParse},
		{name: "bad body", method: http.MethodPost, target: "/v1/users/alice/reinforcements", body: `{`, wantStatus: http.StatusBadRequest, wantRef: errors.RefParse},
		{name: "hidden user", method: http.MethodGet, target: "/v1/users/.git/reinforcements", wantStatus: http.StatusBadRequest, wantRef: errors.RefParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			rec := f.do(tt.method, tt.target, tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantRef, errorRef(t, rec))
		})
	}
}

func TestRefreshCorpus_Worker(t *testing.T) {
	f := newFixture(t)
	f.refresher.On("Trigger", "new notes").Return(true).Once()
	f.refresher.On("Trigger", "api").Return(false).Once()

	rec := f.do(http.MethodPost, "/v1/corpus/refresh", `{"reason":"new notes"}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	var resp RefreshResponse
	decodeData(t, rec, &resp)
	assert.Equal(t, RefreshResponse{Reason: "new notes", Queued: true, Via: "worker"}, resp)

	rec = f.do(http.MethodPost, "/v1/corpus/refresh", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	decodeData(t, rec, &resp)
	assert.False(t, resp.Queued)
	assert.Equal(t, "api", resp.Reason)

	f.refresher.AssertExpectations(t)
}

func TestRefreshCorpus_Queue(t *testing.T) {
	f := newFixture(t)
	publisher := new(MockPublisher)
	f.handler.WithPublisher(publisher)
	publisher.On("PublishRefreshRequest", mock.Anything, "api").Return(queue.RefreshRequest{ID: "req-1", Reason: "api"}, nil)

	rec := f.do(http.MethodPost, "/v1/corpus/refresh", "")

	assert.Equal(t, http.StatusAccepted, rec.Code)
	var resp RefreshResponse
	decodeData(t, rec, &resp)
	assert.Equal(t, RefreshResponse{RequestID: "req-1", Reason: "api", Queued: true, Via: "queue"}, resp)
	f.refresher.AssertNotCalled(t, "Trigger", mock.Anything)
}

func TestRefreshCorpus_QueueFailureFallsBack(t *testing.T) {
	f := newFixture(t)
	publisher := new(MockPublisher)
	f.handler.WithPublisher(publisher)
	publisher.On("PublishRefreshRequest", mock.Anything, "api").Return(queue.RefreshRequest{}, fmt.Errorf("channel closed"))
	f.refresher.On("Trigger", "api").Return(true)

	rec := f.do(http.MethodPost, "/v1/corpus/refresh", "")

	assert.Equal(t, http.StatusAccepted, rec.Code)
	var resp RefreshResponse
	decodeData(t, rec, &resp)
	assert.Equal(t, "worker", resp.Via)
	f.refresher.AssertExpectations(t)
}

func TestLastReport(t *testing.T) {
	f := newFixture(t)
	f.refresher.On("LastReport").Return(service.Report{}, false).Once()
	f.refresher.On("LastReport").Return(service.Report{TeamFiles: 3, LoadedUsers: []string{"alice"}}, true).Once()

	rec := f.do(http.MethodGet, "/v1/corpus/report", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodGet, "/v1/corpus/report", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var report service.Report
	decodeData(t, rec, &report)
	assert.Equal(t, 3, report.TeamFiles)
}

func TestSearchCorpus(t *testing.T) {
	f := newFixture(t)
	docs := []models.Document{models.NewDocument("Commit in acme/api", map[string]string{"source": "commits"})}
	f.index.On("Search", mock.Anything, "indexer work", 5).Return(docs, nil)
	f.index.On("Search", mock.Anything, "anything", 12).Return(nil, nil)

	rec := f.do(http.MethodGet, "/v1/corpus/search?q=indexer+work&k=500", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var resp SearchResponse
	decodeData(t, rec, &resp)
	assert.Equal(t, "indexer work", resp.Query)
	assert.Equal(t, docs, resp.Results)

	rec = f.do(http.MethodGet, "/v1/corpus/search?q=anything&k=12", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &resp)
	assert.Empty(t, resp.Results)
	assert.NotNil(t, resp.Results)

	rec = f.do(http.MethodGet, "/v1/corpus/search", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCorpusStats(t *testing.T) {
	f := newFixture(t)
	f.index.On("Stats", mock.Anything).Return(models.CorpusStats{TotalDocuments: 42, TeamMembers: 3}, nil).Once()
	f.index.On("Stats", mock.Anything).Return(models.CorpusStats{}, errors.New("DB_STATS_ERROR", "Failed", "", nil, errors.LevelFatal)).Once()

	rec := f.do(http.MethodGet, "/v1/corpus/stats", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var stats models.CorpusStats
	decodeData(t, rec, &stats)
	assert.Equal(t, 42, stats.TotalDocuments)

	rec = f.do(http.MethodGet, "/v1/corpus/stats", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAsk(t *testing.T) {
	f := newFixture(t)
	f.asker.On("Ask", mock.Anything, "who is busiest?").Return(chat.Answer{Question: "who is busiest?", Answer: "alice"}, nil)
	f.asker.On("Ask", mock.Anything, "").Return(chat.Answer{}, errors.Parse("Invalid question", "", nil))
	f.asker.On("Ask", mock.Anything, "down?").Return(chat.Answer{}, errors.Unavailable("Chat is not configured", ""))

	rec := f.do(http.MethodPost, "/v1/chat", `{"question":"who is busiest?"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	var answer chat.Answer
	decodeData(t, rec, &answer)
	assert.Equal(t, "alice", answer.Answer)

	rec = f.do(http.MethodPost, "/v1/chat", `{"question":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/v1/chat", `{"question":"down?"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestTopics(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/v1/chat/topics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var topics []string
	decodeData(t, rec, &topics)
	assert.Equal(t, chat.Topics(), topics)
}
