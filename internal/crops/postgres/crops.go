package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/farm-management/internal/crops"
	cropModel "github.com/frahmantamala/farm-management/internal/core/datamodel/crop"
)

// CropRepository is stateless: each call runs on the tenant connection the
// request was bound to.
type CropRepository struct{}

func NewCropRepository() crops.RepositoryAPI {
	return &CropRepository{}
}

func (r *CropRepository) GetAll(db *gorm.DB) ([]*cropModel.Crop, error) {
	var records []*cropModel.Crop
	err := db.Order("name ASC").Find(&records).Error
	return records, err
}

func (r *CropRepository) GetByID(db *gorm.DB, id int64) (*cropModel.Crop, error) {
	var record cropModel.Crop
	err := db.Where("id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *CropRepository) Create(db *gorm.DB, crop *cropModel.Crop) error {
	return db.Create(crop).Error
}
