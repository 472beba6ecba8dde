package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/centavo-app/centavo/internal/models"
)

// Export handles GET /api/export. It writes the snapshot as an XLSX workbook,
// optionally narrowed to one month.
//
//	@Summary		Export records as an XLSX workbook
//	@Tags			reports
//	@Produce		application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
//	@Param			month	query	string	false	"Filter by month (YYYY-MM)"
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/export [get]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	month, ok := monthParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("month must be YYYY-MM"))
		return
	}
	set := h.svc.Snapshot()
	if month != "" {
		set = set.InMonth(month)
	}

	f := excelize.NewFile()
	const sheet = "Records"
	index, err := f.NewSheet(sheet)
	if err != nil {
		slog.Error("export: create sheet failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("export failed"))
		return
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headers := []string{"Id", "Type", "Date", "Description", "Value", "Category", "Account", "Payment Method", "Status", "Notes"}
	for i, name := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		_ = f.SetCellValue(sheet, cell, name)
	}

	for idx, rec := range set {
		row := idx + 2
		value := ""
		if !rec.Value.IsZero() || rec.Type == models.TypeExpense || rec.Type == models.TypeIncome {
			value = rec.Value.String()
		}
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), rec.ID)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), string(rec.Type))
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), rec.Date)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), rec.Description)
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), value)
		_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), rec.Category)
		_ = f.SetCellValue(sheet, fmt.Sprintf("G%d", row), rec.Account)
		_ = f.SetCellValue(sheet, fmt.Sprintf("H%d", row), rec.PaymentMethod)
		_ = f.SetCellValue(sheet, fmt.Sprintf("I%d", row), string(rec.Status))
		_ = f.SetCellValue(sheet, fmt.Sprintf("J%d", row), rec.Notes)
	}

	_ = f.SetColWidth(sheet, "A", "A", 36)
	_ = f.SetColWidth(sheet, "B", "B", 20)
	_ = f.SetColWidth(sheet, "C", "C", 12)
	_ = f.SetColWidth(sheet, "D", "D", 30)
	_ = f.SetColWidth(sheet, "E", "E", 12)
	_ = f.SetColWidth(sheet, "J", "J", 30)

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"records_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(w); err != nil {
		slog.Error("export: write failed", slog.String("error", err.Error()))
	}
}
