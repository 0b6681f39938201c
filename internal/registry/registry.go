package registry

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/frahmantamala/farm-management/internal"
	tenantModel "github.com/frahmantamala/farm-management/internal/core/datamodel/tenant"
)

// DirectoryAPI is the slice of the tenant catalog the registry needs.
type DirectoryAPI interface {
	GetByID(id uuid.UUID) (*tenantModel.Tenant, error)
	GetDatabaseConfig(tenantID uuid.UUID) (*tenantModel.DatabaseConfig, error)
}

// CredentialDecrypter opens stored database passwords.
type CredentialDecrypter interface {
	Decrypt(token string) (string, error)
}

// Opener establishes a connection from a DSN. Injected so tests can count
// and fake connection opens.
type Opener func(dsn string) (*gorm.DB, error)

// DefaultOpener opens a postgres connection for one tenant database.
func DefaultOpener(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

// Registry caches at most one live connection per tenant. Lookups for
// different tenants proceed in parallel; the miss path for one tenant is
// serialized through singleflight so concurrent first requests never open
// duplicate handles.
type Registry struct {
	mu     sync.RWMutex
	conns  map[string]*gorm.DB
	group  singleflight.Group
	dir    DirectoryAPI
	cipher CredentialDecrypter
	open   Opener
	logger *slog.Logger
}

func New(dir DirectoryAPI, cipher CredentialDecrypter, open Opener, logger *slog.Logger) *Registry {
	if open == nil {
		open = DefaultOpener
	}
	return &Registry{
		conns:  make(map[string]*gorm.DB),
		dir:    dir,
		cipher: cipher,
		open:   open,
		logger: logger,
	}
}

// Get returns the live connection for a tenant, opening and caching one on
// first access. Failed attempts are never cached, so the next request
// retries from scratch.
func (r *Registry) Get(tenantID uuid.UUID) (*gorm.DB, error) {
	key := tenantID.String()

	r.mu.RLock()
	if db, ok := r.conns[key]; ok {
		r.mu.RUnlock()
		return db, nil
	}
	r.mu.RUnlock()

	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		// A concurrent caller may have populated the cache while this
		// flight was queued.
		r.mu.RLock()
		if db, ok := r.conns[key]; ok {
			r.mu.RUnlock()
			return db, nil
		}
		r.mu.RUnlock()

		db, err := r.connect(tenantID)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.conns[key] = db
		r.mu.Unlock()

		return db, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*gorm.DB), nil
}

func (r *Registry) connect(tenantID uuid.UUID) (*gorm.DB, error) {
	t, err := r.dir.GetByID(tenantID)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up tenant", err)
	}
	if t == nil {
		return nil, internal.ErrTenantNotFound
	}
	if !t.IsActive {
		return nil, internal.ErrTenantInactive
	}

	cfg, err := r.dir.GetDatabaseConfig(tenantID)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up tenant database config", err)
	}
	if cfg == nil {
		return nil, internal.ErrTenantConfigNotFound
	}

	password, err := r.cipher.Decrypt(cfg.Password)
	if err != nil {
		r.logger.Error("tenant credential decryption failed",
			"tenant_id", tenantID,
			"database", cfg.DatabaseName,
			"error", err)
		return nil, err
	}

	db, err := r.open(BuildDSN(cfg, password))
	if err != nil {
		r.logger.Warn("tenant connection open failed",
			"tenant_id", tenantID,
			"database", cfg.DatabaseName,
			"host", cfg.Host,
			"error", err)
		return nil, internal.NewConnectionError("failed to connect to tenant database", err)
	}

	r.logger.Info("tenant connection established",
		"tenant_id", tenantID,
		"database", cfg.DatabaseName)

	return db, nil
}

// Evict closes and removes the cached connection if present. Idempotent.
func (r *Registry) Evict(tenantID uuid.UUID) {
	key := tenantID.String()

	r.mu.Lock()
	db, ok := r.conns[key]
	if ok {
		delete(r.conns, key)
	}
	r.mu.Unlock()

	if !ok {
		return
	}

	closeConnection(db, r.logger, key)
	r.logger.Info("tenant connection evicted", "tenant_id", key)
}

// EvictAll closes every cached connection. Used at process shutdown.
func (r *Registry) EvictAll() {
	r.mu.Lock()
	conns := r.conns
	r.conns = make(map[string]*gorm.DB)
	r.mu.Unlock()

	for key, db := range conns {
		closeConnection(db, r.logger, key)
	}

	if len(conns) > 0 {
		r.logger.Info("all tenant connections evicted", "count", len(conns))
	}
}

// Size reports the number of live cached connections.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

func closeConnection(db *gorm.DB, logger *slog.Logger, tenantID string) {
	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("failed to access underlying connection for close", "tenant_id", tenantID, "error", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Error("failed to close tenant connection", "tenant_id", tenantID, "error", err)
	}
}

// BuildDSN assembles the postgres DSN for a tenant database from its stored
// configuration and the decrypted password.
func BuildDSN(cfg *tenantModel.DatabaseConfig, password string) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.Username, password, cfg.DatabaseName)
}
