package user

import "time"

// User lives in the tenant's own database. Rows with the same id can exist
// in two tenants' databases and mean entirely different people.
type User struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	FirstName    string    `gorm:"not null" json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `gorm:"not null" json:"-"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Module groups related actions. A user granted a module is granted every
// action under it.
type Module struct {
	ID       int64  `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"uniqueIndex;not null" json:"name"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	Actions []ModuleAction `gorm:"foreignKey:ModuleID" json:"actions,omitempty"`
}

func (Module) TableName() string {
	return "modules"
}

// ModuleAction maps one capability to the concrete route pattern it permits.
type ModuleAction struct {
	ID           int64  `gorm:"primaryKey" json:"id"`
	ModuleID     int64  `gorm:"index;not null" json:"module_id"`
	Name         string `gorm:"not null" json:"name"`
	PathEndpoint string `gorm:"column:path_endpoint;not null" json:"path_endpoint"`
}

func (ModuleAction) TableName() string {
	return "module_actions"
}

// UserModule links a user to a granted module.
type UserModule struct {
	ID       int64 `gorm:"primaryKey" json:"id"`
	UserID   int64 `gorm:"index;not null" json:"user_id"`
	ModuleID int64 `gorm:"index;not null" json:"module_id"`
}

func (UserModule) TableName() string {
	return "user_modules"
}
