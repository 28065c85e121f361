package service

// In-memory repository fakes shared by the service tests. They keep the
// same semantics the SQL repositories promise (CAS numbering, one-time
// refresh rotation, unique usernames) so the services can be exercised
// end to end without a database.

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/passvault-io/passvault/internal/store"
	"github.com/passvault-io/passvault/models"
)

type fakeUserRepository struct {
	mu     sync.Mutex
	users  map[string]models.User
	nextID int64

	replaceErr error
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[string]models.User)}
}

func (f *fakeUserRepository) CreateUser(_ context.Context, user models.User) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.users[user.Username]; exists {
		return models.User{}, store.ErrUsernameAlreadyExists
	}
	f.nextID++
	user.UserID = f.nextID
	f.users[user.Username] = user
	return user, nil
}

func (f *fakeUserRepository) FindUserByUsername(_ context.Context, username string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, exists := f.users[username]
	if !exists {
		return models.User{}, store.ErrNoUserWasFound
	}
	return user, nil
}

func (f *fakeUserRepository) ReplaceCredentials(_ context.Context, user models.User, rev models.VaultRevision) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.replaceErr != nil {
		return 0, f.replaceErr
	}

	stored, exists := f.users[user.Username]
	if !exists {
		return 0, store.ErrNoUserWasFound
	}
	stored.Salt = user.Salt
	stored.Verifier = user.Verifier
	stored.EncryptionType = user.EncryptionType
	stored.EncryptionSettings = user.EncryptionSettings
	stored.EncryptionSalt = user.EncryptionSalt
	f.users[user.Username] = stored

	return rev.Revision + 1, nil
}

type fakeVaultRepository struct {
	mu   sync.Mutex
	revs map[int64][]models.VaultRevision
}

func newFakeVaultRepository() *fakeVaultRepository {
	return &fakeVaultRepository{revs: make(map[int64][]models.VaultRevision)}
}

func (f *fakeVaultRepository) maxRevisionLocked(userID int64) int64 {
	var max int64
	for _, rev := range f.revs[userID] {
		if rev.Revision > max {
			max = rev.Revision
		}
	}
	return max
}

func (f *fakeVaultRepository) PushRevision(_ context.Context, rev models.VaultRevision) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if rev.Revision != f.maxRevisionLocked(rev.UserID) {
		return 0, store.ErrVaultConflict
	}
	rev.Revision++
	f.revs[rev.UserID] = append(f.revs[rev.UserID], rev)
	return rev.Revision, nil
}

func (f *fakeVaultRepository) CurrentRevision(_ context.Context, userID int64) (models.VaultRevision, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	revs := f.revs[userID]
	if len(revs) == 0 {
		return models.VaultRevision{}, store.ErrNoRevisions
	}
	current := revs[0]
	for _, rev := range revs[1:] {
		if rev.Revision > current.Revision {
			current = rev
		}
	}
	return current, nil
}

func (f *fakeVaultRepository) CurrentRevisionNumber(_ context.Context, userID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxRevisionLocked(userID), nil
}

func (f *fakeVaultRepository) RevisionsSince(_ context.Context, userID, fromRevision int64) ([]models.VaultRevision, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.VaultRevision
	for _, rev := range f.revs[userID] {
		if rev.Revision > fromRevision {
			out = append(out, rev)
		}
	}
	slices.SortFunc(out, func(a, b models.VaultRevision) int {
		return int(a.Revision - b.Revision)
	})
	return out, nil
}

func (f *fakeVaultRepository) AllRevisions(ctx context.Context, userID int64) ([]models.VaultRevision, error) {
	return f.RevisionsSince(ctx, userID, 0)
}

func (f *fakeVaultRepository) DeleteRevisions(_ context.Context, userID int64, revisions []int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	max := f.maxRevisionLocked(userID)
	var kept []models.VaultRevision
	var deleted int64
	for _, rev := range f.revs[userID] {
		if rev.Revision != max && slices.Contains(revisions, rev.Revision) {
			deleted++
			continue
		}
		kept = append(kept, rev)
	}
	f.revs[userID] = kept
	return deleted, nil
}

func (f *fakeVaultRepository) ListUserIDs(_ context.Context) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var ids []int64
	for id, revs := range f.revs {
		if len(revs) > 0 {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

type fakeRefreshTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]models.RefreshToken
}

func newFakeRefreshTokenRepository() *fakeRefreshTokenRepository {
	return &fakeRefreshTokenRepository{tokens: make(map[string]models.RefreshToken)}
}

func (f *fakeRefreshTokenRepository) Create(_ context.Context, token models.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token.ID] = token
	return nil
}

func (f *fakeRefreshTokenRepository) Rotate(_ context.Context, tokenID string, now time.Time, replacement models.RefreshToken) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	token, exists := f.tokens[tokenID]
	if !exists || token.ConsumedAt != nil || !token.ExpiresAt.After(now) {
		return 0, store.ErrRefreshTokenNotFound
	}

	token.ConsumedAt = &now
	f.tokens[tokenID] = token

	replacement.UserID = token.UserID
	if replacement.DeviceLabel == "" {
		replacement.DeviceLabel = token.DeviceLabel
	}
	f.tokens[replacement.ID] = replacement

	return token.UserID, nil
}

func (f *fakeRefreshTokenRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var deleted int64
	for id, token := range f.tokens {
		if token.ConsumedAt != nil || !token.ExpiresAt.After(now) {
			delete(f.tokens, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakeAuditRepository struct {
	mu     sync.Mutex
	events []models.AuditEvent
}

func newFakeAuditRepository() *fakeAuditRepository {
	return &fakeAuditRepository{}
}

func (f *fakeAuditRepository) Record(_ context.Context, event models.AuditEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeAuditRepository) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, 0, len(f.events))
	for _, event := range f.events {
		out = append(out, event.Action)
	}
	return out
}

func newFakeRepositories() (*store.Repositories, *fakeUserRepository, *fakeVaultRepository, *fakeRefreshTokenRepository, *fakeAuditRepository) {
	users := newFakeUserRepository()
	vault := newFakeVaultRepository()
	refresh := newFakeRefreshTokenRepository()
	audit := newFakeAuditRepository()

	repos := &store.Repositories{
		UserRepository:         users,
		VaultRepository:        vault,
		RefreshTokenRepository: refresh,
		AuditRepository:        audit,
	}
	return repos, users, vault, refresh, audit
}
