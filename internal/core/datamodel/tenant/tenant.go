package tenant

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tenant is the platform-database identity record for one isolated customer.
// Deactivation is a tombstone: the row survives, is_active flips off, and
// connection resolution is blocked from then on.
type Tenant struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CompanyName string         `gorm:"not null" json:"company_name"`
	Email       string         `gorm:"not null" json:"email"`
	Subdomain   string         `gorm:"uniqueIndex;not null" json:"subdomain"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	IsCreatedDB bool           `gorm:"column:is_created_db;default:false" json:"is_created_db"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	DatabaseConfig *DatabaseConfig `gorm:"foreignKey:TenantID" json:"database_config,omitempty"`
}

func (Tenant) TableName() string {
	return "tenants"
}

// DatabaseConfig holds the connection parameters of one tenant's database.
// Password is always the cipher token ivHex:authTagHex:cipherHex, never
// plaintext.
type DatabaseConfig struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID     uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"tenant_id"`
	DatabaseName string    `gorm:"uniqueIndex;not null" json:"database_name"`
	Host         string    `gorm:"not null" json:"host"`
	Port         int       `gorm:"not null" json:"port"`
	Username     string    `gorm:"not null" json:"username"`
	Password     string    `gorm:"not null" json:"-"`
	IsMigrated   bool      `gorm:"default:false" json:"is_migrated"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (DatabaseConfig) TableName() string {
	return "tenant_database_configs"
}
