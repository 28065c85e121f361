package store

import (
	"github.com/passvault-io/passvault/internal/logger"
)

// Repositories aggregates every persistence-layer dependency the service
// layer needs, so that wiring in main stays a single constructor call.
type Repositories struct {
	UserRepository         UserRepository
	VaultRepository        VaultRepository
	RefreshTokenRepository RefreshTokenRepository
	AuditRepository        AuditRepository
}

// NewRepositories constructs all PostgreSQL-backed repositories over a
// shared database handle.
func NewRepositories(db *DB, log *logger.Logger) *Repositories {
	return &Repositories{
		UserRepository:         NewUserRepository(db, log),
		VaultRepository:        NewVaultRepository(db, log),
		RefreshTokenRepository: NewRefreshTokenRepository(db, log),
		AuditRepository:        NewAuditRepository(db, log),
	}
}
