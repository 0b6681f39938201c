package crops

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/frahmantamala/farm-management/internal"
	cropModel "github.com/frahmantamala/farm-management/internal/core/datamodel/crop"
)

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetAllCrops(db *gorm.DB) ([]*cropModel.Crop, error) {
	return s.repo.GetAll(db)
}

func (s *Service) GetCrop(db *gorm.DB, id int64) (*cropModel.Crop, error) {
	crop, err := s.repo.GetByID(db, id)
	if err != nil {
		return nil, err
	}
	if crop == nil {
		return nil, internal.ErrCropNotFound
	}
	return crop, nil
}

func (s *Service) CreateCrop(db *gorm.DB, ownerID int64, dto CreateCropDTO) (*cropModel.Crop, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	crop := &cropModel.Crop{
		Name:    dto.Name,
		Variety: dto.Variety,
		StockKg: dto.StockKg,
		UserID:  ownerID,
	}

	if err := s.repo.Create(db, crop); err != nil {
		return nil, internal.NewInternalError("failed to create crop", err)
	}

	s.logger.Info("crop created", "crop_id", crop.ID, "owner_id", ownerID)
	return crop, nil
}
