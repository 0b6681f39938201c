package postgres

import (
	"database/sql"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/farm-management/internal/auth"
	userModel "github.com/frahmantamala/farm-management/internal/core/datamodel/user"
)

// UserRepository is stateless: the tenant connection is supplied per call
// because each request may be bound to a different tenant database.
type UserRepository struct{}

func NewUserRepository() auth.UserRepositoryAPI {
	return &UserRepository{}
}

func (r *UserRepository) GetUserByID(db *gorm.DB, id int64) (*userModel.User, error) {
	var user userModel.User
	err := db.Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetModulesForUser(db *gorm.DB, userID int64) ([]userModel.Module, error) {
	var modules []userModel.Module
	err := db.
		Joins("JOIN user_modules ON user_modules.module_id = modules.id").
		Where("user_modules.user_id = ?", userID).
		Preload("Actions").
		Find(&modules).Error
	if err != nil {
		return nil, err
	}
	return modules, nil
}

func (r *UserRepository) GetPasswordForEmail(db *gorm.DB, email string) (string, int64, error) {
	var passwordHash string
	var userID int64
	query := `SELECT id, password_hash FROM users WHERE email = ?`

	row := db.Raw(query, email).Row()
	if err := row.Scan(&userID, &passwordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", 0, errors.New("user not found")
		}
		return "", 0, err
	}
	return passwordHash, userID, nil
}
