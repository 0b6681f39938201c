package crops

import (
	"gorm.io/gorm"

	cropModel "github.com/frahmantamala/farm-management/internal/core/datamodel/crop"
)

// RepositoryAPI runs against the tenant connection supplied per call; crops
// never choose a connection themselves.
type RepositoryAPI interface {
	GetAll(db *gorm.DB) ([]*cropModel.Crop, error)
	GetByID(db *gorm.DB, id int64) (*cropModel.Crop, error)
	Create(db *gorm.DB, crop *cropModel.Crop) error
}

type ServiceAPI interface {
	GetAllCrops(db *gorm.DB) ([]*cropModel.Crop, error)
	GetCrop(db *gorm.DB, id int64) (*cropModel.Crop, error)
	CreateCrop(db *gorm.DB, ownerID int64, dto CreateCropDTO) (*cropModel.Crop, error)
}
