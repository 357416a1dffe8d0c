package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/formforge/formbuilder-service/internal/models"
	"github.com/formforge/formbuilder-service/internal/repositories"
)

// exportService flattens a form's responses into a spreadsheet: one row
// per response, one column per question.
type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

func (s *exportService) ExportXLSX(ctx context.Context, formID uint, userID string) ([]byte, error) {
	form, rows, err := s.collectRows(ctx, formID, userID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Responses"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	for rowIndex, row := range rows {
		for colIndex, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIndex+1, rowIndex+1)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write cell: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("Exported responses to XLSX",
		"form_id", form.ID,
		"rows", len(rows)-1)
	return buf.Bytes(), nil
}

func (s *exportService) ExportCSV(ctx context.Context, formID uint, userID string) ([]byte, error) {
	form, rows, err := s.collectRows(ctx, formID, userID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	s.logger.Info("Exported responses to CSV",
		"form_id", form.ID,
		"rows", len(rows)-1)
	return buf.Bytes(), nil
}

func (s *exportService) collectRows(ctx context.Context, formID uint, userID string) (*models.Form, [][]string, error) {
	form, err := s.repo.Form().GetByIDWithQuestions(ctx, formID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrFormNotFound
		}
		return nil, nil, fmt.Errorf("failed to get form: %w", err)
	}
	if form.CreatedBy != userID {
		return nil, nil, ErrFormNotOwned
	}

	responses, _, err := s.repo.Response().ListByForm(ctx, formID, repositories.ResponseFilters{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list responses: %w", err)
	}

	header := []string{"Response ID", "Submitted At", "Respondent", "Email"}
	if form.Mode == models.ModeTest {
		header = append(header, "Score", "Max Score")
	}
	for _, q := range form.Questions {
		header = append(header, fmt.Sprintf("Q%d: %s", q.Position+1, q.Title))
	}

	rows := [][]string{header}
	for _, response := range responses {
		row, err := s.responseRow(form, response)
		if err != nil {
			s.logger.Warn("Skipping unreadable response in export",
				"response_id", response.ID,
				"error", err)
			continue
		}
		rows = append(rows, row)
	}

	return form, rows, nil
}

func (s *exportService) responseRow(form *models.Form, response *models.Response) ([]string, error) {
	var answers models.SubmittedAnswers
	if err := json.Unmarshal(response.Answers, &answers); err != nil {
		return nil, fmt.Errorf("invalid answers payload: %w", err)
	}

	row := []string{
		strconv.FormatUint(uint64(response.ID), 10),
		response.SubmittedAt.Format(time.RFC3339),
		stringOrEmpty(response.RespondentName),
		stringOrEmpty(response.RespondentEmail),
	}
	if form.Mode == models.ModeTest {
		row = append(row, floatOrEmpty(response.Score), floatOrEmpty(response.MaxScore))
	}

	for _, q := range form.Questions {
		raw, ok := answers[q.Position]
		if !ok {
			row = append(row, "")
			continue
		}
		formatted, err := formatAnswer(&q, raw)
		if err != nil {
			return nil, err
		}
		row = append(row, formatted)
	}

	return row, nil
}

// formatAnswer renders a submitted answer as a single readable cell.
func formatAnswer(q *models.Question, raw json.RawMessage) (string, error) {
	switch q.Type {
	case models.Categorize:
		var content models.CategorizeContent
		if err := json.Unmarshal(q.Content, &content); err != nil {
			return "", err
		}
		var answer models.CategorizeAnswer
		if err := json.Unmarshal(raw, &answer); err != nil {
			return "", err
		}
		parts := make([]string, 0, len(answer.Categories))
		for i, placed := range answer.Categories {
			name := fmt.Sprintf("category %d", i+1)
			if i < len(content.Categories) {
				name = content.Categories[i].Name
			}
			parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(placed, ", ")))
		}
		return strings.Join(parts, " | "), nil

	case models.Cloze:
		var answer models.ClozeAnswer
		if err := json.Unmarshal(raw, &answer); err != nil {
			return "", err
		}
		return strings.Join(answer.Blanks, " | "), nil

	case models.Comprehension:
		var answer models.ComprehensionAnswer
		if err := json.Unmarshal(raw, &answer); err != nil {
			return "", err
		}
		return strings.Join(answer.FollowUpAnswers, " | "), nil

	default:
		return "", fmt.Errorf("unsupported question type: %s", q.Type)
	}
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func floatOrEmpty(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
