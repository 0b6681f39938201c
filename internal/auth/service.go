package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/frahmantamala/farm-management/internal"
)

type Service struct {
	users      UserRepositoryAPI
	admins     AdministratorRepositoryAPI
	tokens     TokenGeneratorAPI
	bcryptCost int
	logger     *slog.Logger
}

func NewService(users UserRepositoryAPI, admins AdministratorRepositoryAPI, tokens TokenGeneratorAPI, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		users:      users,
		admins:     admins,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// HashPassword derives the stored hash for a new or rotated password using
// the configured bcrypt cost.
func (s *Service) HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), s.bcryptCost)
	if err != nil {
		return "", internal.NewInternalError("failed to hash password", err)
	}
	return string(hash), nil
}

// AuthenticateUser validates tenant-user credentials against the tenant
// connection attached to the request context and returns a signed token.
func (s *Service) AuthenticateUser(ctx context.Context, dto LoginDTO) (string, *User, error) {
	if err := dto.Validate(); err != nil {
		return "", nil, err
	}

	db, ok := internal.TenantDBFromContext(ctx)
	if !ok {
		s.logger.Warn("user login without tenant connection attached")
		return "", nil, internal.ErrNoTenantConnection
	}

	storedHash, userID, err := s.users.GetPasswordForEmail(db, dto.Email)
	if err != nil {
		return "", nil, internal.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(dto.Password)); err != nil {
		return "", nil, internal.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(userID, dto.Email)
	if err != nil {
		return "", nil, internal.NewInternalError("failed to generate token", err)
	}

	user, err := s.loadUser(db, userID)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// AuthenticateAdministrator validates platform-administrator credentials
// against the platform database.
func (s *Service) AuthenticateAdministrator(dto LoginDTO) (string, *Administrator, error) {
	if err := dto.Validate(); err != nil {
		return "", nil, err
	}

	storedHash, adminID, err := s.admins.GetPasswordForEmail(dto.Email)
	if err != nil {
		return "", nil, internal.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(dto.Password)); err != nil {
		return "", nil, internal.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(adminID, dto.Email)
	if err != nil {
		return "", nil, internal.NewInternalError("failed to generate token", err)
	}

	admin, err := s.loadAdministrator(adminID)
	if err != nil {
		return "", nil, err
	}

	return token, admin, nil
}

// ResolveUser verifies a tenant-user token and reconstructs the principal
// from the tenant connection attached to the request context. If no
// connection was attached the resolution fails explicitly; it never falls
// back to another connection.
func (s *Service) ResolveUser(ctx context.Context, tokenString string) (*User, error) {
	claims, err := s.verify(tokenString)
	if err != nil {
		return nil, err
	}

	db, ok := internal.TenantDBFromContext(ctx)
	if !ok {
		s.logger.Warn("user token presented without tenant connection attached", "subject", claims.Subject)
		return nil, internal.ErrNoTenantConnection
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		s.logger.Warn("token rejected: malformed subject", "subject", claims.Subject)
		return nil, internal.ErrInvalidToken
	}

	return s.loadUser(db, userID)
}

// loadUser reconstructs the principal and recomputes its flattened
// permission set from current grants. Nothing here is cached across
// requests, so a revoked grant is gone on the very next request.
func (s *Service) loadUser(db *gorm.DB, userID int64) (*User, error) {
	record, err := s.users.GetUserByID(db, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if record == nil {
		s.logger.Warn("user token rejected: principal does not exist", "user_id", userID)
		return nil, internal.ErrPrincipalNotFound
	}
	if !record.IsActive {
		s.logger.Warn("user token rejected: principal is inactive", "user_id", userID)
		return nil, internal.ErrPrincipalInactive
	}

	modules, err := s.users.GetModulesForUser(db, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user permissions", err)
	}

	return &User{
		ID:          record.ID,
		Email:       record.Email,
		FirstName:   record.FirstName,
		IsActive:    record.IsActive,
		Permissions: FlattenPermissions(modules),
	}, nil
}

// ResolveAdministrator verifies an administrator token and reconstructs the
// principal from the platform database.
func (s *Service) ResolveAdministrator(tokenString string) (*Administrator, error) {
	claims, err := s.verify(tokenString)
	if err != nil {
		return nil, err
	}

	adminID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		s.logger.Warn("token rejected: malformed subject", "subject", claims.Subject)
		return nil, internal.ErrInvalidToken
	}

	return s.loadAdministrator(adminID)
}

func (s *Service) loadAdministrator(adminID int64) (*Administrator, error) {
	record, err := s.admins.GetByID(adminID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load administrator", err)
	}
	if record == nil {
		s.logger.Warn("administrator token rejected: principal does not exist", "administrator_id", adminID)
		return nil, internal.ErrPrincipalNotFound
	}
	if !record.IsActive {
		s.logger.Warn("administrator token rejected: principal is inactive", "administrator_id", adminID)
		return nil, internal.ErrPrincipalInactive
	}

	return &Administrator{
		ID:        record.ID,
		Email:     record.Email,
		FirstName: record.FirstName,
		Role:      record.Role,
		IsActive:  record.IsActive,
	}, nil
}

// verify checks signature and expiry. Expired and invalid tokens both
// surface as unauthorized but are logged under different reasons.
func (s *Service) verify(tokenString string) (*Claims, error) {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok && appErr.Code == internal.ErrCodeTokenExpired {
			s.logger.Warn("token rejected", "reason", "expired")
		} else {
			s.logger.Warn("token rejected", "reason", "invalid")
		}
		return nil, err
	}
	return claims, nil
}

// JWTTokenGenerator signs and verifies HS256 tokens with a shared secret.
type JWTTokenGenerator struct {
	Secret []byte
	TTL    time.Duration
}

func NewJWTTokenGenerator(secret string, ttl time.Duration) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		Secret: []byte(secret),
		TTL:    ttl,
	}
}

func (j *JWTTokenGenerator) GenerateToken(subjectID int64, email string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(subjectID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, internal.ErrInvalidToken
}
