package tenant

import (
	"context"

	"github.com/google/uuid"

	tenantModel "github.com/frahmantamala/farm-management/internal/core/datamodel/tenant"
)

// RepositoryAPI is the platform-database catalog of tenants and their
// database configurations.
type RepositoryAPI interface {
	Create(t *tenantModel.Tenant) error
	GetByID(id uuid.UUID) (*tenantModel.Tenant, error)
	GetBySubdomain(subdomain string) (*tenantModel.Tenant, error)
	GetAll() ([]*tenantModel.Tenant, error)
	Deactivate(id uuid.UUID) error
	GetDatabaseConfig(tenantID uuid.UUID) (*tenantModel.DatabaseConfig, error)
	SaveDatabaseConfig(cfg *tenantModel.DatabaseConfig) error
}

type ServiceAPI interface {
	CreateTenant(ctx context.Context, dto CreateTenantDTO) (*tenantModel.Tenant, error)
	GetTenant(id uuid.UUID) (*tenantModel.Tenant, error)
	GetTenantBySubdomain(subdomain string) (*tenantModel.Tenant, error)
	GetAllTenants() ([]*tenantModel.Tenant, error)
	DeactivateTenant(ctx context.Context, id uuid.UUID) error
	ReconfigureDatabase(ctx context.Context, id uuid.UUID, dto ReconfigureDatabaseDTO) error
}

// CredentialEncrypter seals database passwords before they reach the
// catalog.
type CredentialEncrypter interface {
	Encrypt(plaintext string) (string, error)
}
