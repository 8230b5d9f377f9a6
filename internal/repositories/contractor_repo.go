package repositories

import (
	"context"

	"contractors/internal/models"
)

// ContractorListParams describes a paged, optionally filtered contractor query.
type ContractorListParams struct {
	UserID     uint
	Query      string // case-insensitive substring match on name; empty matches all
	Page       int    // 1-based
	Count      int
	OrderByAsc bool
}

// ContractorRepository defines the interface for contractor data access.
// Create, Update and Delete are transactional: the contractor row and its
// additional-data rows become visible (or disappear) atomically.
type ContractorRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Contractor, error)
	GetByUserAndID(ctx context.Context, userID, contractorID uint) (*models.Contractor, error)
	List(ctx context.Context, params ContractorListParams) ([]models.Contractor, int64, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Contractor, error)
	Create(ctx context.Context, contractor *models.Contractor) error
	Update(ctx context.Context, contractor *models.Contractor) error
	Delete(ctx context.Context, contractor *models.Contractor) error
}
