package tenant

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/frahmantamala/farm-management/internal"
	"github.com/frahmantamala/farm-management/internal/core/events"
	tenantModel "github.com/frahmantamala/farm-management/internal/core/datamodel/tenant"
)

type Service struct {
	repo   RepositoryAPI
	cipher CredentialEncrypter
	bus    *events.EventBus
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, cipher CredentialEncrypter, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		cipher: cipher,
		bus:    bus,
		logger: logger,
	}
}

// CreateTenant registers a tenant and its database configuration. The
// database password is sealed by the credential cipher before it is stored.
func (s *Service) CreateTenant(ctx context.Context, dto CreateTenantDTO) (*tenantModel.Tenant, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetBySubdomain(dto.Subdomain); err == nil && existing != nil {
		return nil, internal.ErrTenantAlreadyExists
	}

	encrypted, err := s.cipher.Encrypt(dto.Database.Password)
	if err != nil {
		s.logger.Error("failed to encrypt tenant database password", "subdomain", dto.Subdomain, "error", err)
		return nil, err
	}

	t := &tenantModel.Tenant{
		ID:          uuid.New(),
		CompanyName: dto.CompanyName,
		Email:       dto.Email,
		Subdomain:   dto.Subdomain,
		IsActive:    true,
		DatabaseConfig: &tenantModel.DatabaseConfig{
			ID:           uuid.New(),
			DatabaseName: dto.Database.DatabaseName,
			Host:         dto.Database.Host,
			Port:         dto.Database.Port,
			Username:     dto.Database.Username,
			Password:     encrypted,
		},
	}
	t.DatabaseConfig.TenantID = t.ID

	if err := s.repo.Create(t); err != nil {
		return nil, internal.NewInternalError("failed to create tenant", err)
	}

	s.logger.Info("tenant created", "tenant_id", t.ID, "subdomain", t.Subdomain)
	if s.bus != nil {
		_ = s.bus.Publish(ctx, events.NewTenantCreatedEvent(t.ID.String(), t.Subdomain))
	}

	return t, nil
}

func (s *Service) GetTenant(id uuid.UUID) (*tenantModel.Tenant, error) {
	t, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, internal.ErrTenantNotFound
	}
	return t, nil
}

func (s *Service) GetTenantBySubdomain(subdomain string) (*tenantModel.Tenant, error) {
	t, err := s.repo.GetBySubdomain(subdomain)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, internal.ErrTenantNotFound
	}
	return t, nil
}

func (s *Service) GetAllTenants() ([]*tenantModel.Tenant, error) {
	return s.repo.GetAll()
}

// DeactivateTenant tombstones the tenant. The deactivation event is
// published synchronously so the cached connection is torn down before the
// call returns.
func (s *Service) DeactivateTenant(ctx context.Context, id uuid.UUID) error {
	t, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if t == nil {
		return internal.ErrTenantNotFound
	}

	if err := s.repo.Deactivate(id); err != nil {
		return internal.NewInternalError("failed to deactivate tenant", err)
	}

	s.logger.Info("tenant deactivated", "tenant_id", id)
	if s.bus != nil {
		if err := s.bus.PublishSync(ctx, events.NewTenantDeactivatedEvent(id.String())); err != nil {
			return err
		}
	}

	return nil
}

// ReconfigureDatabase replaces a tenant's connection configuration. The new
// password is re-encrypted and the rotation event is published synchronously
// so any live cached connection is invalidated before the call returns.
func (s *Service) ReconfigureDatabase(ctx context.Context, id uuid.UUID, dto ReconfigureDatabaseDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	t, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if t == nil {
		return internal.ErrTenantNotFound
	}

	cfg, err := s.repo.GetDatabaseConfig(id)
	if err != nil {
		return err
	}
	if cfg == nil {
		return internal.ErrTenantConfigNotFound
	}

	encrypted, err := s.cipher.Encrypt(dto.Password)
	if err != nil {
		s.logger.Error("failed to encrypt rotated tenant database password", "tenant_id", id, "error", err)
		return err
	}

	cfg.Host = dto.Host
	cfg.Port = dto.Port
	cfg.Username = dto.Username
	cfg.Password = encrypted

	if err := s.repo.SaveDatabaseConfig(cfg); err != nil {
		return internal.NewInternalError("failed to save tenant database configuration", err)
	}

	s.logger.Info("tenant database reconfigured", "tenant_id", id)
	if s.bus != nil {
		if err := s.bus.PublishSync(ctx, events.NewTenantCredentialsRotatedEvent(id.String())); err != nil {
			return err
		}
	}

	return nil
}
