package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"contractors/internal/models"
	"contractors/internal/repositories"
	"contractors/internal/validation"
	"contractors/pkg/rabbitmq"

	"github.com/google/uuid"
)

// ContractorService handles business logic for contractors and their
// additional data.
type ContractorService struct {
	contractorRepo repositories.ContractorRepository
	userRepo       repositories.UserRepository
	mqClient       *rabbitmq.Client // nil when no broker is configured
}

// NewContractorService creates a new ContractorService.
func NewContractorService(contractorRepo repositories.ContractorRepository, userRepo repositories.UserRepository, mqClient *rabbitmq.Client) *ContractorService {
	return &ContractorService{
		contractorRepo: contractorRepo,
		userRepo:       userRepo,
		mqClient:       mqClient,
	}
}

// GetContractors returns one page of the user's contractors, optionally
// filtered by a case-insensitive substring match on name, ordered by name.
func (s *ContractorService) GetContractors(ctx context.Context, userID uint, query string, page, count int, orderByAsc bool) (*models.PaginatedData, error) {
	if page < 1 || count < 1 {
		return nil, Unprocessable("Page and count must be positive.")
	}

	contractors, totalCount, err := s.contractorRepo.List(ctx, repositories.ContractorListParams{
		UserID:     userID,
		Query:      query,
		Page:       page,
		Count:      count,
		OrderByAsc: orderByAsc,
	})
	if err != nil {
		return nil, Internal("Encountered an issue while getting contractors.", err)
	}

	if contractors == nil {
		contractors = []models.Contractor{}
	}

	return &models.PaginatedData{
		Data:       contractors,
		Page:       page,
		Count:      count,
		TotalCount: totalCount,
		TotalPages: int(math.Ceil(float64(totalCount) / float64(count))),
	}, nil
}

// GetContractorByID returns a contractor with its additional data. The
// lookup is deliberately not owner-scoped: reads are unscoped, writes are
// owner-scoped.
func (s *ContractorService) GetContractorByID(ctx context.Context, contractorID uint) (*models.Contractor, error) {
	contractor, err := s.contractorRepo.GetByID(ctx, contractorID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NotFound("The contractor with the given id could not be found.")
		}
		return nil, Internal("Encountered an issue while getting the contractor.", err)
	}
	return contractor, nil
}

// CreateContractor validates the request, inserts the contractor and its
// additional data atomically and returns the generated id.
func (s *ContractorService) CreateContractor(ctx context.Context, req *models.AddUpdateContractorRequest) (uint, error) {
	if req.Name == "" {
		return 0, Unprocessable("The contractor name cannot be empty.")
	}

	if invalid := invalidFieldNames(req.AdditionalData); len(invalid) > 0 {
		return 0, Unprocessable(invalidFieldsMessage(invalid))
	}

	exists, err := s.userRepo.Exists(ctx, req.UserID)
	if err != nil {
		return 0, Internal("Encountered an issue while adding a contractor.", err)
	}
	if !exists {
		return 0, NotFound("No user with the given id was found.")
	}

	contractor := &models.Contractor{
		Name:           req.Name,
		Description:    req.Description,
		UserID:         req.UserID,
		AdditionalData: toAdditionalData(req.AdditionalData),
	}

	if err := s.contractorRepo.Create(ctx, contractor); err != nil {
		return 0, Internal("Encountered an issue while adding a contractor.", err)
	}

	s.publishEvent(rabbitmq.EventContractorCreated, contractor.ID, req.UserID)

	return contractor.ID, nil
}

// UpdateContractor overwrites name and description and replaces the whole
// additional-data set. The contractor must belong to the given user.
func (s *ContractorService) UpdateContractor(ctx context.Context, userID, contractorID uint, req *models.AddUpdateContractorRequest) error {
	if invalid := invalidFieldNames(req.AdditionalData); len(invalid) > 0 {
		return Unprocessable(invalidFieldsMessage(invalid))
	}

	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return Internal("Encountered an issue while updating a contractor.", err)
	}
	if !exists {
		return NotFound("No user with the given id was found.")
	}

	if _, err := s.contractorRepo.GetByUserAndID(ctx, userID, contractorID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return NotFound("The contractor with the given id could not be found for the user with the given id.")
		}
		return Internal("Encountered an issue while updating a contractor.", err)
	}

	contractor := &models.Contractor{
		ID:             contractorID,
		Name:           req.Name,
		Description:    req.Description,
		UserID:         userID,
		AdditionalData: toAdditionalData(req.AdditionalData),
	}

	if err := s.contractorRepo.Update(ctx, contractor); err != nil {
		return Internal("Encountered an issue while updating a contractor.", err)
	}
	return nil
}

// DeleteContractor removes the contractor and its additional data. The
// contractor must belong to the given user.
func (s *ContractorService) DeleteContractor(ctx context.Context, userID, contractorID uint) error {
	contractor, err := s.contractorRepo.GetByUserAndID(ctx, userID, contractorID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return NotFound("No contractor with the given id was found for the user with the given id.")
		}
		return Internal("Encountered an issue while deleting a contractor.", err)
	}

	if err := s.contractorRepo.Delete(ctx, contractor); err != nil {
		return Internal("Encountered an issue while deleting a contractor.", err)
	}

	s.publishEvent(rabbitmq.EventContractorDeleted, contractorID, userID)

	return nil
}

// invalidFieldNames groups submitted entries by lower-cased field name and
// returns the names that are duplicated or fail the type/value check, in
// submission order.
func invalidFieldNames(data []models.AdditionalDataEntry) []string {
	groups := make(map[string][]models.AdditionalDataEntry)
	var order []string
	for _, entry := range data {
		key := strings.ToLower(entry.FieldName)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], entry)
	}

	var invalid []string
	for _, key := range order {
		group := groups[key]
		bad := len(group) > 1
		if !bad {
			for _, entry := range group {
				if !validation.Check(entry.FieldType, entry.FieldValue) {
					bad = true
					break
				}
			}
		}
		if bad {
			invalid = append(invalid, key)
		}
	}
	return invalid
}

func invalidFieldsMessage(invalid []string) string {
	return fmt.Sprintf("Invalid fields: %s. Check for duplicates and that the values match their declared types.", strings.Join(invalid, ","))
}

func toAdditionalData(entries []models.AdditionalDataEntry) []models.AdditionalData {
	data := make([]models.AdditionalData, 0, len(entries))
	for _, entry := range entries {
		data = append(data, models.AdditionalData{
			FieldName:  entry.FieldName,
			FieldType:  entry.FieldType,
			FieldValue: entry.FieldValue,
		})
	}
	return data
}

// publishEvent emits a contractor lifecycle event. Publishing is best
// effort: a missing broker or a publish failure is logged and never fails
// the operation that triggered it.
func (s *ContractorService) publishEvent(eventType string, contractorID, userID uint) {
	if s.mqClient == nil {
		return
	}

	event := rabbitmq.ContractorEvent{
		EventID:      uuid.New().String(),
		Type:         eventType,
		ContractorID: contractorID,
		UserID:       userID,
		OccurredAt:   time.Now().UTC(),
	}
	if err := s.mqClient.PublishContractorEvent(event); err != nil {
		log.Printf("Warning: failed to publish %s event for contractor %d: %v", eventType, contractorID, err)
	}
}
