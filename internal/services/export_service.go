package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dotwork/testadmin-service/internal/models"
	"github.com/dotwork/testadmin-service/internal/repositories"
	"github.com/dotwork/testadmin-service/internal/utils"
	"github.com/xuri/excelize/v2"
)

type exportService struct {
	repo   repositories.Repository
	logger utils.Logger
}

func NewExportService(repo repositories.Repository, logger utils.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ExportResults renders every attempt for a test as an XLSX sheet and
// returns the bytes plus a suggested filename.
func (s *exportService) ExportResults(ctx context.Context, testID uint) ([]byte, string, error) {
	test, err := s.repo.Test().GetByID(ctx, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, "", ErrTestNotFound
		}
		return nil, "", fmt.Errorf("failed to get test: %w", err)
	}

	attempts, _, err := s.repo.Attempt().List(ctx, repositories.AttemptFilters{
		TestID: &testID,
		SortBy: "submitted_at",
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to list attempts: %w", err)
	}

	f := excelize.NewFile()
	sheetName := "Results"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"Candidate ID", "Candidate Name", "Candidate Email", "Status",
		"Submitted At", "Duration (minutes)", "Total Awarded", "Total Possible",
		"Percentage", "Overall Feedback",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, attempt := range attempts {
		row := []interface{}{
			attempt.CandidateID,
			attempt.Candidate.Name,
			attempt.CandidateEmail,
			string(attempt.Status),
			attempt.SubmittedAt.Format("2006-01-02 15:04:05"),
		}

		if attempt.DurationSeconds != nil {
			row = append(row, *attempt.DurationSeconds/60)
		} else {
			row = append(row, "")
		}

		if attempt.Status == models.AttemptEvaluated && len(attempt.Evaluation) > 0 {
			var evaluation models.Evaluation
			if err := json.Unmarshal(attempt.Evaluation, &evaluation); err != nil {
				s.logger.WarnContext(ctx, "Skipping malformed evaluation in export",
					"attempt_id", attempt.ID,
					"error", err)
				row = append(row, "", "", "", "")
			} else {
				row = append(row,
					evaluation.TotalAwarded,
					evaluation.TotalPossible,
					evaluation.Percentage,
					evaluation.OverallFeedback,
				)
			}
		} else {
			row = append(row, "", "", "", "")
		}

		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to write Excel file: %w", err)
	}

	filename := fmt.Sprintf("results-%s.xlsx", test.Slug)
	return buf.Bytes(), filename, nil
}
