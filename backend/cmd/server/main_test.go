package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/X1NY1NG/VRGame/backend/internal/extraction"
	"github.com/X1NY1NG/VRGame/backend/internal/heuristics"
	"github.com/X1NY1NG/VRGame/backend/internal/kg"
	"github.com/X1NY1NG/VRGame/backend/internal/mentions"
	"github.com/X1NY1NG/VRGame/backend/internal/turn"
)

type stubStore struct {
	commitErr error
	dumpErr   error
}

func (s *stubStore) MentionCache(ctx context.Context, userID string) (mentions.Cache, error) {
	return mentions.Cache{}, nil
}

func (s *stubStore) SaveMentionCache(ctx context.Context, userID string, cache mentions.Cache) error {
	return nil
}

func (s *stubStore) CommitGraph(ctx context.Context, userID string, m kg.Mutation) error {
	return s.commitErr
}

func (s *stubStore) EdgesTouchingAny(ctx context.Context, userID string, namesLC []string, limit int) ([]kg.Edge, error) {
	return nil, nil
}

func (s *stubStore) DumpGraph(ctx context.Context, userID string) (*kg.GraphDump, error) {
	if s.dumpErr != nil {
		return nil, s.dumpErr
	}
	return &kg.GraphDump{
		Nodes: []kg.DumpNode{{ID: "n1", Label: "Emily", Type: kg.NodePerson}},
	}, nil
}

type stubLLM struct {
	payload extraction.RawPayload
}

func (s *stubLLM) Extract(ctx context.Context, text string) (extraction.RawPayload, error) {
	return s.payload, nil
}

func (s *stubLLM) RewriteCoref(ctx context.Context, text string, recentNames []string) (string, error) {
	return "", nil
}

func testRouter(store kg.Store, llm turn.LLM) *gin.Engine {
	gin.SetMode(gin.TestMode)
	orchestrator := turn.NewOrchestrator(store, llm, heuristics.NewRegexClassifier(), 50*time.Millisecond)
	return newRouter(orchestrator, store, zap.NewNop())
}

func TestHealthEndpoint(t *testing.T) {
	router := testRouter(&stubStore{}, &stubLLM{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	router := testRouter(&stubStore{}, &stubLLM{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("OPTIONS", "/api/turn", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestTurnEndpoint_Success(t *testing.T) {
	conf := 0.9
	llm := &stubLLM{payload: extraction.RawPayload{
		Edges: []extraction.RawEdge{
			{Type: "lives_in",
				From:       extraction.RawEndpoint{Name: "Emily"},
				To:         extraction.RawEndpoint{Name: "Toa Payoh"},
				Confidence: &conf},
		},
	}}
	router := testRouter(&stubStore{}, llm)

	w := httptest.NewRecorder()
	body := `{"userId":"u1","text":"My daughter Emily lives in Toa Payoh"}`
	req, _ := http.NewRequest("POST", "/api/turn", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Emily lives in Toa Payoh")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestTurnEndpoint_MissingFields(t *testing.T) {
	router := testRouter(&stubStore{}, &stubLLM{})

	for _, body := range []string{`{}`, `{"userId":"u1"}`, `{"text":"hello"}`, `not json`} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/turn", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "body: %s", body)
	}
}

func TestTurnEndpoint_StoreFailure(t *testing.T) {
	router := testRouter(&stubStore{commitErr: errors.New("unavailable")}, &stubLLM{})

	w := httptest.NewRecorder()
	body := `{"userId":"u1","text":"hello there"}`
	req, _ := http.NewRequest("POST", "/api/turn", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "unavailable", "internal detail must not leak")
}

func TestGraphEndpoint(t *testing.T) {
	router := testRouter(&stubStore{}, &stubLLM{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/graph/u1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Cache-Control"), "no-store")
	assert.Contains(t, w.Body.String(), "Emily")
}

func TestGraphEndpoint_StoreFailure(t *testing.T) {
	router := testRouter(&stubStore{dumpErr: errors.New("unavailable")}, &stubLLM{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/graph/u1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
