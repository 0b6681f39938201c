package postgres

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/frahmantamala/farm-management/internal/tenant"
	tenantModel "github.com/frahmantamala/farm-management/internal/core/datamodel/tenant"
)

type TenantRepository struct {
	db *gorm.DB
}

func NewTenantRepository(db *gorm.DB) tenant.RepositoryAPI {
	return &TenantRepository{db: db}
}

func (r *TenantRepository) Create(t *tenantModel.Tenant) error {
	return r.db.Create(t).Error
}

func (r *TenantRepository) GetByID(id uuid.UUID) (*tenantModel.Tenant, error) {
	var t tenantModel.Tenant
	err := r.db.Where("id = ?", id).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TenantRepository) GetBySubdomain(subdomain string) (*tenantModel.Tenant, error) {
	var t tenantModel.Tenant
	err := r.db.Where("subdomain = ?", subdomain).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TenantRepository) GetAll() ([]*tenantModel.Tenant, error) {
	var tenants []*tenantModel.Tenant
	err := r.db.Order("created_at DESC").Find(&tenants).Error
	return tenants, err
}

func (r *TenantRepository) Deactivate(id uuid.UUID) error {
	return r.db.Model(&tenantModel.Tenant{}).Where("id = ?", id).Update("is_active", false).Error
}

func (r *TenantRepository) GetDatabaseConfig(tenantID uuid.UUID) (*tenantModel.DatabaseConfig, error) {
	var cfg tenantModel.DatabaseConfig
	err := r.db.Where("tenant_id = ?", tenantID).First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}

func (r *TenantRepository) SaveDatabaseConfig(cfg *tenantModel.DatabaseConfig) error {
	return r.db.Save(cfg).Error
}
