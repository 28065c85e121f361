package store

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/passvault-io/passvault/internal/clock"
	"github.com/passvault-io/passvault/internal/logger"
)

// LoginSession is the ephemeral server-side state of one SRP exchange,
// created on login init and destroyed on validate (or by the TTL sweep).
// ServerSecret must never leave the process.
type LoginSession struct {
	AttemptID    string
	UserID       int64
	Username     string
	Salt         []byte
	Verifier     *big.Int
	ServerSecret *big.Int
	ServerPublic *big.Int
	CreatedAt    time.Time
}

// LoginSessionStore keeps in-flight SRP exchanges in an owned, TTL-indexed
// map. Entries are strictly single-use: Consume removes the entry under the
// lock, so a second concurrent validate for the same attempt fails with
// [ErrLoginSessionNotFound] (replay protection). Abandoned attempts are
// reclaimed by the sweep loop.
type LoginSessionStore struct {
	mu       sync.Mutex
	sessions map[string]LoginSession

	ttl   time.Duration
	clock clock.Clock
	log   *logger.Logger
}

// NewLoginSessionStore constructs a store whose entries expire ttl after
// creation, measured against the supplied clock.
func NewLoginSessionStore(ttl time.Duration, clk clock.Clock, log *logger.Logger) *LoginSessionStore {
	log.Debug().Dur("ttl", ttl).Msg("creating login session store")
	return &LoginSessionStore{
		sessions: make(map[string]LoginSession),
		ttl:      ttl,
		clock:    clk,
		log:      log,
	}
}

// Put registers a new exchange, stamping it with the current time.
func (s *LoginSessionStore) Put(session LoginSession) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session.CreatedAt = s.clock.Now()
	s.sessions[session.AttemptID] = session
}

// Consume removes and returns the session for attemptID. It fails with
// [ErrLoginSessionNotFound] when the attempt is unknown, already consumed,
// or past its TTL. Expired entries are dropped on access rather than kept
// until the next sweep.
func (s *LoginSessionStore) Consume(attemptID string) (LoginSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[attemptID]
	if !ok {
		return LoginSession{}, ErrLoginSessionNotFound
	}
	delete(s.sessions, attemptID)

	if s.clock.Now().Sub(session.CreatedAt) > s.ttl {
		return LoginSession{}, ErrLoginSessionNotFound
	}

	return session, nil
}

// Len reports the number of in-flight exchanges.
func (s *LoginSessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// StartSweeper launches a goroutine that drops expired entries every
// interval until ctx is cancelled. Sweeping exists so that abandoned logins
// do not pin memory; correctness does not depend on it because Consume
// checks the TTL itself.
func (s *LoginSessionStore) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if dropped := s.sweep(); dropped > 0 {
					s.log.Debug().Int("dropped", dropped).Msg("swept expired login sessions")
				}
			}
		}
	}()
}

func (s *LoginSessionStore) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	dropped := 0
	for id, session := range s.sessions {
		if now.Sub(session.CreatedAt) > s.ttl {
			delete(s.sessions, id)
			dropped++
		}
	}
	return dropped
}
