package postgres

import (
	"database/sql"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/farm-management/internal/auth"
	adminModel "github.com/frahmantamala/farm-management/internal/core/datamodel/admin"
)

// AdministratorRepository reads from the fixed platform database.
type AdministratorRepository struct {
	db *gorm.DB
}

func NewAdministratorRepository(db *gorm.DB) auth.AdministratorRepositoryAPI {
	return &AdministratorRepository{db: db}
}

func (r *AdministratorRepository) GetByID(id int64) (*adminModel.Administrator, error) {
	var admin adminModel.Administrator
	err := r.db.Where("id = ?", id).First(&admin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

func (r *AdministratorRepository) GetPasswordForEmail(email string) (string, int64, error) {
	var passwordHash string
	var adminID int64
	query := `SELECT id, password_hash FROM administrators WHERE email = ?`

	row := r.db.Raw(query, email).Row()
	if err := row.Scan(&adminID, &passwordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", 0, errors.New("administrator not found")
		}
		return "", 0, err
	}
	return passwordHash, adminID, nil
}
