package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"contractors/internal/models"
	"contractors/internal/repositories"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// ReportService renders a PDF listing of a user's contractors.
type ReportService struct {
	userRepo       repositories.UserRepository
	contractorRepo repositories.ContractorRepository
}

// NewReportService creates a new ReportService.
func NewReportService(userRepo repositories.UserRepository, contractorRepo repositories.ContractorRepository) *ReportService {
	return &ReportService{
		userRepo:       userRepo,
		contractorRepo: contractorRepo,
	}
}

// CreateReport loads all of the user's contractors and renders them into a
// paginated PDF document, returned as raw bytes.
func (s *ReportService) CreateReport(ctx context.Context, userID uint) ([]byte, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NotFound("User not found.")
		}
		return nil, Internal("Encountered an issue while creating the report.", err)
	}

	contractors, err := s.contractorRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, Internal("Encountered an issue while creating the report.", err)
	}

	document, err := buildReport(user, contractors, time.Now().UTC())
	if err != nil {
		return nil, Internal("Encountered an issue while creating the report.", err)
	}
	return document, nil
}

func buildReport(user *models.User, contractors []models.Contractor, generatedAt time.Time) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()

	m := maroto.New(cfg)

	err := m.RegisterHeader(
		row.New(10).Add(
			text.NewCol(8, "Contractors report", props.Text{Size: 14, Style: fontstyle.Bold}),
			text.NewCol(4, generatedAt.Format("2006-01-02"), props.Text{Size: 10, Align: align.Right}),
		),
		row.New(8).Add(
			text.NewCol(12, fmt.Sprintf("Prepared for %s", user.UserName), props.Text{Size: 10}),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register report header: %w", err)
	}

	if len(contractors) == 0 {
		m.AddRows(row.New(8).Add(
			text.NewCol(12, "No contractors to report.", props.Text{Size: 10}),
		))
	}

	for _, contractor := range contractors {
		addContractorRows(m, contractor)
	}

	document, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate report: %w", err)
	}
	return document.GetBytes(), nil
}

func addContractorRows(m core.Maroto, contractor models.Contractor) {
	m.AddRows(row.New(9).Add(
		text.NewCol(12, contractor.Name, props.Text{Size: 12, Style: fontstyle.Bold, Top: 2}),
	))
	if contractor.Description != "" {
		m.AddRows(row.New(5).Add(
			text.NewCol(12, contractor.Description, props.Text{Size: 9}),
		))
	}

	if len(contractor.AdditionalData) == 0 {
		return
	}

	m.AddRows(row.New(5).Add(
		text.NewCol(4, "Field", props.Text{Size: 9, Style: fontstyle.Bold}),
		text.NewCol(2, "Type", props.Text{Size: 9, Style: fontstyle.Bold}),
		text.NewCol(6, "Value", props.Text{Size: 9, Style: fontstyle.Bold}),
	))
	for _, data := range contractor.AdditionalData {
		m.AddRows(row.New(4).Add(
			text.NewCol(4, data.FieldName, props.Text{Size: 9}),
			text.NewCol(2, data.FieldType, props.Text{Size: 9}),
			text.NewCol(6, data.FieldValue, props.Text{Size: 9}),
		))
	}
}
