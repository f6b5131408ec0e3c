package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutor-server/internal/utils/platformerrors"
)

// memoryStore is an in-memory TranscriptStore with the same
// empty-on-never-written semantics as the postgres repository.
type memoryStore struct {
	mu         sync.Mutex
	docs       map[string][]string
	loadErr    error
	appendErr  error
	clearErr   error
	appendCall int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{docs: make(map[string][]string)}
}

func (s *memoryStore) Load(_ context.Context, id string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return append([]string(nil), s.docs[id]...), nil
}

func (s *memoryStore) Append(_ context.Context, id string, lines []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendCall++
	if s.appendErr != nil {
		return s.appendErr
	}
	s.docs[id] = append(s.docs[id], lines...)
	return nil
}

func (s *memoryStore) Clear(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clearErr != nil {
		return s.clearErr
	}
	delete(s.docs, id)
	return nil
}

// generatorFunc adapts a function to the ReplyGenerator interface.
type generatorFunc func(ctx context.Context, history []string, message string) (string, error)

func (f generatorFunc) GenerateReply(ctx context.Context, history []string, message string) (string, error) {
	return f(ctx, history, message)
}

func echoGenerator(reply string) generatorFunc {
	return func(context.Context, []string, string) (string, error) {
		return reply, nil
	}
}

func TestPostCommitsFullTurn(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, echoGenerator("4"), zerolog.Nop())
	ctx := context.Background()

	reply, err := svc.Post(ctx, "abc123", "What is 2+2?")
	require.NoError(t, err)
	assert.Equal(t, "4", reply)

	history, err := svc.History(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "User: What is 2+2?\nAI: 4", history)
}

func TestTurnOrderPreserved(t *testing.T) {
	store := newMemoryStore()
	replies := []string{"r1", "r2"}
	calls := 0
	svc := NewService(store, generatorFunc(func(context.Context, []string, string) (string, error) {
		reply := replies[calls]
		calls++
		return reply, nil
	}), zerolog.Nop())
	ctx := context.Background()

	_, err := svc.Post(ctx, "conv", "m1")
	require.NoError(t, err)
	_, err = svc.Post(ctx, "conv", "m2")
	require.NoError(t, err)

	history, err := svc.History(ctx, "conv")
	require.NoError(t, err)
	assert.Equal(t, "User: m1\nAI: r1\nUser: m2\nAI: r2", history)
}

func TestGeneratorSeesPriorHistory(t *testing.T) {
	store := newMemoryStore()
	var seen []string
	svc := NewService(store, generatorFunc(func(_ context.Context, history []string, _ string) (string, error) {
		seen = append([]string(nil), history...)
		return "ok", nil
	}), zerolog.Nop())
	ctx := context.Background()

	_, err := svc.Post(ctx, "conv", "m1")
	require.NoError(t, err)
	assert.Empty(t, seen)

	_, err = svc.Post(ctx, "conv", "m2")
	require.NoError(t, err)
	assert.Equal(t, []string{"User: m1", "AI: ok"}, seen)
}

func TestResetThenHistoryEmpty(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, echoGenerator("sure"), zerolog.Nop())
	ctx := context.Background()

	_, err := svc.Post(ctx, "abc123", "hello")
	require.NoError(t, err)

	require.NoError(t, svc.Reset(ctx, "abc123"))

	history, err := svc.History(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "", history)
}

func TestResetNeverWrittenConversation(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, echoGenerator("sure"), zerolog.Nop())

	require.NoError(t, svc.Reset(context.Background(), "ghost"))
}

func TestGenerationFailureLeavesHistoryUnchanged(t *testing.T) {
	store := newMemoryStore()
	failing := generatorFunc(func(context.Context, []string, string) (string, error) {
		return "", errors.New("backend down")
	})
	good := echoGenerator("fine")

	ctx := context.Background()
	svc := NewService(store, good, zerolog.Nop())
	_, err := svc.Post(ctx, "conv", "m1")
	require.NoError(t, err)

	before, err := svc.History(ctx, "conv")
	require.NoError(t, err)

	svcFail := NewService(store, failing, zerolog.Nop())
	_, err = svcFail.Post(ctx, "conv", "m2")
	require.Error(t, err)

	after, err := svc.History(ctx, "conv")
	require.NoError(t, err)
	assert.Equal(t, before, after, "failed post must not append a partial turn")
}

func TestStorageFailureSurfacesAsError(t *testing.T) {
	store := newMemoryStore()
	store.loadErr = platformerrors.NewError(context.Background(), platformerrors.LayerRepository,
		platformerrors.ErrorTypeDatabaseError, "db down", nil, "")
	svc := NewService(store, echoGenerator("x"), zerolog.Nop())

	_, err := svc.History(context.Background(), "conv")
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeDatabaseError))

	_, err = svc.Post(context.Background(), "conv", "hi")
	require.Error(t, err)
	assert.Zero(t, store.appendCall, "nothing may be appended when load fails")
}

func TestEmptyMessageRejected(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, echoGenerator("x"), zerolog.Nop())

	for _, message := range []string{"", "   ", "\n\t"} {
		_, err := svc.Post(context.Background(), "conv", message)
		require.Error(t, err)
		assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
	}
	assert.Zero(t, store.appendCall)
}

func TestSequentialPostsCommitAllTurns(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, echoGenerator("reply"), zerolog.Nop())
	ctx := context.Background()

	const posts = 10
	for i := 0; i < posts; i++ {
		_, err := svc.Post(ctx, "conv", fmt.Sprintf("message %d", i))
		require.NoError(t, err)
	}

	lines, err := store.Load(ctx, "conv")
	require.NoError(t, err)
	assert.Len(t, lines, 2*posts)
}

func TestConcurrentPostsSameConversationSerialize(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, echoGenerator("reply"), zerolog.Nop())
	ctx := context.Background()

	const posts = 25
	var wg sync.WaitGroup
	for i := 0; i < posts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Post(ctx, "conv", fmt.Sprintf("message %d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	lines, err := store.Load(ctx, "conv")
	require.NoError(t, err)
	assert.Len(t, lines, 2*posts, "no concurrent post may drop another's turn")

	// Every committed turn stays adjacent to its own reply.
	for i := 0; i < len(lines); i += 2 {
		userTurn, ok := ParseTurn(lines[i])
		require.True(t, ok)
		assert.Equal(t, RoleUser, userTurn.Role)
		assistantTurn, ok := ParseTurn(lines[i+1])
		require.True(t, ok)
		assert.Equal(t, RoleAssistant, assistantTurn.Role)
	}
}

func TestDifferentConversationsIndependent(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, echoGenerator("reply"), zerolog.Nop())
	ctx := context.Background()

	_, err := svc.Post(ctx, "a", "hello from a")
	require.NoError(t, err)
	_, err = svc.Post(ctx, "b", "hello from b")
	require.NoError(t, err)

	require.NoError(t, svc.Reset(ctx, "a"))

	historyA, err := svc.History(ctx, "a")
	require.NoError(t, err)
	historyB, err := svc.History(ctx, "b")
	require.NoError(t, err)

	assert.Equal(t, "", historyA)
	assert.Equal(t, "User: hello from b\nAI: reply", historyB)
}
