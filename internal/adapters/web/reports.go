package web

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"
)

// report handles GET /api/companies/{companyID}/reports?from=&to=.
// The response carries every bucket with its drill-down rows, so the client
// can show both the summary numbers and the lists behind them.
func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.Report(r.Context(), chi.URLParam(r, "companyID"),
		r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSON(w, rep)
}

// drilldown handles GET /api/companies/{companyID}/reports/drilldown?section=&bucket=.
// It returns just the rows behind one report bucket, for clients that do not
// want the full report payload. Sections: status, type, usage, events.
func (h *Handler) drilldown(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.Report(r.Context(), chi.URLParam(r, "companyID"),
		r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		serviceError(w, r, err)
		return
	}

	section := r.URL.Query().Get("section")
	bucket := r.URL.Query().Get("bucket")
	switch section {
	case "status":
		for _, b := range rep.ByStatus {
			if b.Status == bucket {
				writeJSON(w, b.Jobs)
				return
			}
		}
	case "type":
		for _, b := range rep.ByType {
			if b.Type == bucket {
				writeJSON(w, b.Jobs)
				return
			}
		}
	case "usage":
		for _, b := range rep.UsageByDisp {
			if b.Disposition == bucket {
				writeJSON(w, b.Rows)
				return
			}
		}
	case "events":
		for _, b := range rep.EventsByType {
			if b.Type == bucket {
				writeJSON(w, b.Events)
				return
			}
		}
	default:
		writeError(w, r, "section must be status, type, usage or events", "VALIDATION", http.StatusBadRequest)
		return
	}
	writeError(w, r, "no such bucket", "NOT_FOUND", http.StatusNotFound)
}

// consistency handles GET /api/companies/{companyID}/consistency.
func (h *Handler) consistency(w http.ResponseWriter, r *http.Request) {
	violations, err := h.svc.ConsistencyCheck(r.Context(), chi.URLParam(r, "companyID"))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{
		"balanced":   len(violations) == 0,
		"violations": violations,
	})
}

// exportReport handles GET /api/companies/{companyID}/reports/export?from=&to=&format=.
// Formats: xlsx (default) and csv. The export flattens the report's usage
// drill-down into one row per consumed part line.
func (h *Handler) exportReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.Report(r.Context(), chi.URLParam(r, "companyID"),
		r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		serviceError(w, r, err)
		return
	}

	headers := []string{"Order", "Job Status", "Job Type", "SKU", "Part", "Qty", "Disposition"}
	var data [][]string
	for _, bucket := range rep.UsageByDisp {
		for _, row := range bucket.Rows {
			data = append(data, []string{
				row.OrderNumber, string(row.JobStatus), string(row.JobType),
				row.SKU, row.Name, strconv.Itoa(row.Qty), bucket.Disposition,
			})
		}
	}

	if r.URL.Query().Get("format") == "csv" {
		exportCSV(w, "report.csv", headers, data)
		return
	}
	exportExcel(w, "Report", headers, data)
}

// exportCSV writes data to CSV format.
func exportCSV(w http.ResponseWriter, filename string, headers []string, data [][]string) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(headers); err != nil {
		return
	}
	for _, row := range data {
		if err := writer.Write(row); err != nil {
			return
		}
	}
}

// exportExcel writes data to Excel format.
func exportExcel(w http.ResponseWriter, sheetName string, headers []string, data [][]string) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		http.Error(w, "failed to create sheet", http.StatusInternalServerError)
		return
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		http.Error(w, "failed to create header style", http.StatusInternalServerError)
		return
	}

	for i, header := range headers {
		cell := fmt.Sprintf("%s1", string(rune('A'+i)))
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, row := range data {
		for colIdx, value := range row {
			cell := fmt.Sprintf("%s%d", string(rune('A'+colIdx)), rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range headers {
		col := string(rune('A' + i))
		f.SetColWidth(sheetName, col, col, 15)
	}

	if sheetName != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", sheetName))

	if err := f.Write(w); err != nil {
		return
	}
}
