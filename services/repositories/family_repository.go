package repositories

import (
	"time"

	"github.com/famquest/famquest_api/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FamilyRepository handles family-related database operations
type FamilyRepository struct {
	BaseRepository
}

func NewFamilyRepository(db *gorm.DB) *FamilyRepository {
	return &FamilyRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (ds *FamilyRepository) CreateFamily(family *model.Family) error {
	now := time.Now()
	if family.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		family.ID = id.String()
	}
	family.CreatedAt = now
	family.UpdatedAt = now
	return ds.db.Create(family).Error
}

func (ds *FamilyRepository) GetFamily(familyID string) (*model.Family, error) {
	var family model.Family
	if err := ds.db.Where("id = ?", familyID).First(&family).Error; err != nil {
		return nil, err
	}
	return &family, nil
}

func (ds *FamilyRepository) GetFamilyByInviteCode(code string) (*model.Family, error) {
	var family model.Family
	if err := ds.db.Where("invite_code = ?", code).First(&family).Error; err != nil {
		return nil, err
	}
	return &family, nil
}

func (ds *FamilyRepository) UpdateInviteCode(familyID, code string) error {
	return ds.db.Model(&model.Family{}).Where("id = ?", familyID).Updates(map[string]interface{}{
		"invite_code": code,
		"updated_at":  time.Now(),
	}).Error
}
