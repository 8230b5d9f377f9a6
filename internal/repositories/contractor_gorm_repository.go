package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"contractors/internal/models"

	"gorm.io/gorm"
)

// GORMContractorRepository is a GORM implementation of ContractorRepository.
type GORMContractorRepository struct {
	db *gorm.DB
}

// NewGORMContractorRepository creates a new instance of GORMContractorRepository.
func NewGORMContractorRepository(db *gorm.DB) *GORMContractorRepository {
	return &GORMContractorRepository{
		db: db,
	}
}

// GetByID retrieves a contractor with its additional data by ID alone.
func (r *GORMContractorRepository) GetByID(ctx context.Context, id uint) (*models.Contractor, error) {
	var contractor models.Contractor
	err := r.db.WithContext(ctx).Preload("AdditionalData").First(&contractor, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("contractor with ID %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get contractor by ID %d: %w", id, err)
	}
	return &contractor, nil
}

// GetByUserAndID retrieves a contractor only if it belongs to the given user.
func (r *GORMContractorRepository) GetByUserAndID(ctx context.Context, userID, contractorID uint) (*models.Contractor, error) {
	var contractor models.Contractor
	err := r.db.WithContext(ctx).Preload("AdditionalData").
		First(&contractor, "id = ? AND user_id = ?", contractorID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("contractor with ID %d for user %d: %w", contractorID, userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get contractor %d for user %d: %w", contractorID, userID, err)
	}
	return &contractor, nil
}

// List returns one page of the user's contractors plus the total match count.
func (r *GORMContractorRepository) List(ctx context.Context, params ContractorListParams) ([]models.Contractor, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Contractor{}).Where("user_id = ?", params.UserID)
	if params.Query != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(params.Query)+"%")
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count contractors: %w", err)
	}

	order := "name DESC"
	if params.OrderByAsc {
		order = "name ASC"
	}

	var contractors []models.Contractor
	err := query.Order(order).
		Offset((params.Page - 1) * params.Count).
		Limit(params.Count).
		Preload("AdditionalData").
		Find(&contractors).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contractors: %w", err)
	}
	return contractors, totalCount, nil
}

// ListByUser returns all of the user's contractors with their additional data.
func (r *GORMContractorRepository) ListByUser(ctx context.Context, userID uint) ([]models.Contractor, error) {
	var contractors []models.Contractor
	err := r.db.WithContext(ctx).Preload("AdditionalData").
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&contractors).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list contractors for user %d: %w", userID, err)
	}
	return contractors, nil
}

// Create inserts the contractor row and its additional-data rows in one
// transaction. On success the contractor carries its generated ID.
func (r *GORMContractorRepository) Create(ctx context.Context, contractor *models.Contractor) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		data := contractor.AdditionalData
		contractor.AdditionalData = nil
		if err := tx.Create(contractor).Error; err != nil {
			return err
		}
		for i := range data {
			data[i].ContractorID = contractor.ID
		}
		if len(data) > 0 {
			if err := tx.Create(&data).Error; err != nil {
				return err
			}
		}
		contractor.AdditionalData = data
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create contractor: %w", err)
	}
	return nil
}

// Update overwrites name and description and replaces the whole
// additional-data set (delete-all, insert-all) in one transaction.
func (r *GORMContractorRepository) Update(ctx context.Context, contractor *models.Contractor) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Contractor{}).Where("id = ?", contractor.ID).Updates(map[string]any{
			"name":        contractor.Name,
			"description": contractor.Description,
		})
		if res.Error != nil {
			return res.Error
		}
		if err := tx.Where("contractor_id = ?", contractor.ID).Delete(&models.AdditionalData{}).Error; err != nil {
			return err
		}
		for i := range contractor.AdditionalData {
			contractor.AdditionalData[i].ContractorID = contractor.ID
		}
		if len(contractor.AdditionalData) > 0 {
			if err := tx.Create(&contractor.AdditionalData).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to update contractor %d: %w", contractor.ID, err)
	}
	return nil
}

// Delete removes the contractor and its additional-data rows in one
// transaction. The explicit child delete keeps SQLite test databases (which
// may run without foreign_keys enabled) consistent with Postgres cascades.
func (r *GORMContractorRepository) Delete(ctx context.Context, contractor *models.Contractor) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contractor_id = ?", contractor.ID).Delete(&models.AdditionalData{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Contractor{}, "id = ?", contractor.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("contractor with ID %d: %w", contractor.ID, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete contractor %d: %w", contractor.ID, err)
	}
	return nil
}
