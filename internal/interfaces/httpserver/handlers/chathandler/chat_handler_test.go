package chathandler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutor-server/internal/domain/conversation"
	"tutor-server/internal/interfaces/httpserver/handlers/chathandler"
	"tutor-server/internal/interfaces/httpserver/routes"
)

type memoryStore struct {
	mu   sync.Mutex
	docs map[string][]string
}

func (s *memoryStore) Load(_ context.Context, id string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.docs[id]...), nil
}

func (s *memoryStore) Append(_ context.Context, id string, lines []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[id] = append(s.docs[id], lines...)
	return nil
}

func (s *memoryStore) Clear(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}

type stubGenerator struct {
	reply string
	err   error
}

func (g *stubGenerator) GenerateReply(context.Context, []string, string) (string, error) {
	return g.reply, g.err
}

func newTestEngine(generator *stubGenerator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	store := &memoryStore{docs: make(map[string][]string)}
	service := conversation.NewService(store, generator, zerolog.Nop())
	handler := chathandler.NewChatHandler(service, zerolog.Nop())

	engine := gin.New()
	routes.Register(engine, handler)
	return engine
}

func do(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	engine.ServeHTTP(recorder, req)
	return recorder
}

func TestGetHistoryEmptyConversation(t *testing.T) {
	engine := newTestEngine(&stubGenerator{reply: "hi"})

	recorder := do(engine, http.MethodGet, "/chat/abc123", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "", recorder.Body.String())
}

func TestPostThenGetHistory(t *testing.T) {
	engine := newTestEngine(&stubGenerator{reply: "4"})

	recorder := do(engine, http.MethodPost, "/chat/abc123", "What is 2+2?")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "4", recorder.Body.String())

	recorder = do(engine, http.MethodGet, "/chat/abc123", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "User: What is 2+2?\nAI: 4", recorder.Body.String())
}

func TestResetThenGetHistory(t *testing.T) {
	engine := newTestEngine(&stubGenerator{reply: "sure"})

	recorder := do(engine, http.MethodPost, "/chat/abc123", "hello")
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = do(engine, http.MethodPost, "/chat/abc123/reset", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "OK", recorder.Body.String())

	recorder = do(engine, http.MethodGet, "/chat/abc123", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "", recorder.Body.String())
}

func TestPostEmptyBodyRejected(t *testing.T) {
	engine := newTestEngine(&stubGenerator{reply: "never"})

	recorder := do(engine, http.MethodPost, "/chat/abc123", "")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = do(engine, http.MethodGet, "/chat/abc123", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "", recorder.Body.String(), "rejected post must not touch the transcript")
}

func TestPostGenerationFailure(t *testing.T) {
	engine := newTestEngine(&stubGenerator{err: errors.New("backend down")})

	recorder := do(engine, http.MethodPost, "/chat/abc123", "hello")
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)

	recorder = do(engine, http.MethodGet, "/chat/abc123", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "", recorder.Body.String(), "failed generation must not persist the user line")
}

func TestConversationsAreIsolated(t *testing.T) {
	engine := newTestEngine(&stubGenerator{reply: "reply"})

	recorder := do(engine, http.MethodPost, "/chat/one", "first")
	require.Equal(t, http.StatusOK, recorder.Code)
	recorder = do(engine, http.MethodPost, "/chat/two", "second")
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = do(engine, http.MethodGet, "/chat/one", "")
	assert.Equal(t, "User: first\nAI: reply", recorder.Body.String())
	recorder = do(engine, http.MethodGet, "/chat/two", "")
	assert.Equal(t, "User: second\nAI: reply", recorder.Body.String())
}
