package conversation

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"tutor-server/internal/infrastructure/metrics"
	"tutor-server/internal/utils/platformerrors"
)

// TranscriptStore is the durable append-only transcript keyed by conversation
// identifier. Load on a never-written identifier returns an empty sequence,
// not an error.
type TranscriptStore interface {
	Load(ctx context.Context, conversationID string) ([]string, error)
	Append(ctx context.Context, conversationID string, lines []string) error
	Clear(ctx context.Context, conversationID string) error
}

// ReplyGenerator produces an assistant reply from accumulated history plus one
// new user message. It persists nothing.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, history []string, message string) (string, error)
}

// Service orchestrates one conversation per identifier: fetch history, post a
// message, reset. All storage access for an identifier goes through its lock,
// so a post's load→generate→append sequence completes before any other
// operation on the same identifier observes storage. Operations on different
// identifiers proceed in parallel.
type Service struct {
	store     TranscriptStore
	generator ReplyGenerator
	log       zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates a conversation service.
func NewService(store TranscriptStore, generator ReplyGenerator, log zerolog.Logger) *Service {
	return &Service{
		store:     store,
		generator: generator,
		log:       log,
		locks:     make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex owning the identifier, creating it on first use.
// Locks are never released from the map; one mutex per identifier ever seen is
// the explicit replacement for a platform-managed single-owner runtime.
func (s *Service) lockFor(conversationID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[conversationID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[conversationID] = lock
	}
	return lock
}

// History returns the conversation transcript as newline-joined lines,
// verbatim as stored. An empty or never-written conversation yields "".
func (s *Service) History(ctx context.Context, conversationID string) (string, error) {
	lock := s.lockFor(conversationID)
	lock.Lock()
	defer lock.Unlock()

	lines, err := s.store.Load(ctx, conversationID)
	if err != nil {
		return "", platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load conversation history")
	}
	return JoinLines(lines), nil
}

// Post records one full exchange: load prior turns, generate a reply, then
// append the user line and the assistant line together. The user line is only
// persisted after a reply was generated; if generation fails the transcript is
// exactly as it was before the call.
func (s *Service) Post(ctx context.Context, conversationID string, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"message must not be empty", nil, "2f6a1f0e-7a44-4c83-9a6e-36f4de1c51a9")
	}

	lock := s.lockFor(conversationID)
	lock.Lock()
	defer lock.Unlock()

	history, err := s.store.Load(ctx, conversationID)
	if err != nil {
		return "", platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load conversation history")
	}

	reply, err := s.generator.GenerateReply(ctx, history, message)
	if err != nil {
		metrics.GenerationFailuresTotal.Inc()
		return "", platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to generate reply")
	}

	if err := s.store.Append(ctx, conversationID, []string{UserLine(message), AssistantLine(reply)}); err != nil {
		return "", platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to append conversation turn")
	}

	metrics.TurnsCommittedTotal.Inc()
	s.log.Debug().
		Str("conversation_id", conversationID).
		Int("history_lines", len(history)).
		Msg("conversation turn committed")

	return reply, nil
}

// Reset clears the conversation transcript. Resetting a never-written
// conversation is not an error.
func (s *Service) Reset(ctx context.Context, conversationID string) error {
	lock := s.lockFor(conversationID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.store.Clear(ctx, conversationID); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to clear conversation")
	}
	metrics.ResetsTotal.Inc()
	return nil
}
