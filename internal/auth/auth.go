package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	adminModel "github.com/frahmantamala/farm-management/internal/core/datamodel/admin"
	userModel "github.com/frahmantamala/farm-management/internal/core/datamodel/user"
)

// Credential channels. Each resolver accepts only its own channel: tenant
// users authenticate via one cookie, platform administrators via another,
// and tenant-management calls carry an administrator token in a header.
const (
	UserTokenCookie   = "user-token"
	AdminTokenCookie  = "administrator-token"
	TenantTokenHeader = "x-tenant-token"
)

// User is a tenant-scoped principal, reconstructed fresh on every request
// from the tenant's own database. Permissions is the flattened set of
// permitted route patterns, recomputed per request so revocation takes
// effect immediately.
type User struct {
	ID          int64    `json:"id"`
	Email       string   `json:"email"`
	FirstName   string   `json:"first_name"`
	IsActive    bool     `json:"is_active"`
	Permissions []string `json:"permissions,omitempty"`
}

func (u *User) HasPermission(pathEndpoint string) bool {
	for _, p := range u.Permissions {
		if p == pathEndpoint {
			return true
		}
	}
	return false
}

// Administrator is a platform-level principal resolved from the fixed
// platform database.
type Administrator struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	Role      string `json:"role"`
	IsActive  bool   `json:"is_active"`
}

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type ServiceAPI interface {
	AuthenticateUser(ctx context.Context, dto LoginDTO) (string, *User, error)
	AuthenticateAdministrator(dto LoginDTO) (string, *Administrator, error)
	ResolveUser(ctx context.Context, token string) (*User, error)
	ResolveAdministrator(token string) (*Administrator, error)
}

type TokenGeneratorAPI interface {
	GenerateToken(subjectID int64, email string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// UserRepositoryAPI loads tenant users. Every method takes the tenant
// connection explicitly: there is no default connection to fall back to, so
// cross-tenant reads are structurally impossible.
type UserRepositoryAPI interface {
	GetUserByID(db *gorm.DB, id int64) (*userModel.User, error)
	GetModulesForUser(db *gorm.DB, userID int64) ([]userModel.Module, error)
	GetPasswordForEmail(db *gorm.DB, email string) (passwordHash string, userID int64, err error)
}

// AdministratorRepositoryAPI loads platform administrators from the fixed
// platform database.
type AdministratorRepositoryAPI interface {
	GetByID(id int64) (*adminModel.Administrator, error)
	GetPasswordForEmail(email string) (passwordHash string, adminID int64, err error)
}

type ctxKey string

const (
	ContextUserKey  ctxKey = "user"
	ContextAdminKey ctxKey = "administrator"
)

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

func AdministratorFromContext(ctx context.Context) (*Administrator, bool) {
	a, ok := ctx.Value(ContextAdminKey).(*Administrator)
	return a, ok
}

func ContextWithAdministrator(ctx context.Context, a *Administrator) context.Context {
	return context.WithValue(ctx, ContextAdminKey, a)
}
