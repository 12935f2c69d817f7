package service

import (
	"context"
	"fmt"

	"library-backend/internal/domains/borrowing/model"
	"library-backend/internal/shared/access"
	"library-backend/internal/shared/utils"
	"library-backend/pkg/logger"

	"github.com/xuri/excelize/v2"
)

// ExportLimit caps the rows written to one export.
const ExportLimit = 10_000

const exportSheet = "Borrowings"

// Export writes the actor's visible borrowings to a spreadsheet, newest first.
func (s *BorrowingService) Export(ctx context.Context, actor access.Actor, filter model.ListFilter) (*excelize.File, error) {
	records, total, err := s.repo.List(ctx, access.ScopeFor(actor), filter, ExportLimit, 0)
	if err != nil {
		return nil, err
	}
	if total > len(records) {
		logger.Warn("Borrowing export truncated", map[string]interface{}{
			"actor_id": actor.ID.String(),
			"exported": len(records),
			"total":    total,
		})
	}

	f, err := buildBorrowingsExcelFile(records, total)
	if err != nil {
		return nil, fmt.Errorf("failed to build excel file: %w", err)
	}
	return f, nil
}

// buildBorrowingsExcelFile writes one row per record. When total exceeds the
// rows written, a note row after the data says how many were left out.
func buildBorrowingsExcelFile(records []model.BorrowingView, total int) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	headers := []string{
		"ID",
		"Borrow Date",
		"Client",
		"Book",
		"Author",
		"Quantity",
		"Status",
		"Recorded By",
		"Created At",
	}
	for colIdx, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(exportSheet, "A1", lastHeader, headerStyle)
	}

	for i, r := range records {
		row := []interface{}{
			r.ID.String(),
			r.BorrowDate.Format(utils.DateLayout),
			r.ClientName,
			r.BookTitle,
			r.BookAuthor,
			r.Quantity,
			string(r.Status),
			r.Username,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		start, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheet, start, &row); err != nil {
			return nil, err
		}
	}

	if total > len(records) {
		cell, _ := excelize.CoordinatesToCellName(1, len(records)+3)
		note := fmt.Sprintf("Showing the newest %d of %d borrowings. Narrow the filter to export the rest.", len(records), total)
		if err := f.SetCellValue(exportSheet, cell, note); err != nil {
			return nil, err
		}
	}

	return f, nil
}
