package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/finance"
	"fintrack/internal/importer"
	applog "fintrack/internal/log"
)

type importResponse struct {
	Imported int              `json:"imported"`
	Skipped  int              `json:"skipped"`
	Mapping  *importer.Mapping `json:"mapping,omitempty"`
}

func (s *Server) handleImportTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions-template.csv"`)
	if err := importer.WriteTemplate(w); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template write failed", applog.FieldError, err)
	}
}

// handleImport stores transactions from a csv, xlsx or ofx request body.
// Spreadsheet columns are detected from the header unless overridden by the
// date, amount, description, category and type query parameters.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBody))
	if err != nil {
		writeError(w, r, badRequest("read upload: %v", err))
		return
	}
	now := s.ledger.Now()

	var (
		txs     []core.Transaction
		resp    importResponse
		table   *importer.Table
		format  = strings.ToLower(r.PathValue("format"))
		logger  = applog.FromContext(ctx).WithComponent(applog.ComponentImport)
	)
	switch format {
	case "csv":
		table, err = importer.ReadCSV(bytes.NewReader(body))
	case "xlsx":
		table, err = importer.ReadXLSX(bytes.NewReader(body))
	case "ofx", "qfx":
		txs, err = importer.ReadOFX(ctx, bytes.NewReader(body), now)
	default:
		writeError(w, r, badRequest("unsupported import format %q", format))
		return
	}
	if err != nil {
		if !errors.Is(err, importer.ErrEmptyFile) {
			err = badRequest("%v", err)
		}
		writeError(w, r, err)
		return
	}

	if table != nil {
		mapping := parseMapping(r.URL.Query(), table.Headers)
		res, err := importer.Convert(table, mapping, now.Location(), now)
		if err != nil {
			writeError(w, r, err)
			return
		}
		txs = res.Transactions
		resp.Skipped = res.Skipped
		resp.Mapping = &mapping
	}

	n, err := s.ledger.ImportTransactions(ctx, txs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp.Imported = n
	logger.InfoContext(ctx, "Import completed",
		applog.FieldOperation, applog.OpImport,
		applog.FieldType, format,
		applog.FieldCount, n,
		"skipped", resp.Skipped)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) selectMonth(r *http.Request) (string, []core.Transaction, error) {
	month, err := parseMonth(r.URL.Query(), finance.AllMonths)
	if err != nil {
		return "", nil, err
	}
	txs, err := s.ledger.Transactions(r.Context())
	if err != nil {
		return "", nil, err
	}
	return month, txs, nil
}

func attachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}

// handleExport downloads the selected month as csv or xlsx.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	month, txs, err := s.selectMonth(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	format := strings.ToLower(r.PathValue("format"))
	switch format {
	case "csv":
		selected, ferr := finance.FilterByMonth(txs, month)
		if ferr != nil {
			writeError(w, r, ferr)
			return
		}
		err = export.WriteCSV(&buf, selected)
		attachment(w, "text/csv; charset=utf-8", export.Filename(month, "csv"))
	case "xlsx":
		report, rerr := export.BuildReport(txs, month, s.ledger.Now(), s.formatter)
		if rerr != nil {
			writeError(w, r, rerr)
			return
		}
		err = export.WriteXLSX(&buf, report)
		attachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", export.Filename(month, "xlsx"))
	default:
		writeError(w, r, badRequest("unsupported export format %q", format))
		return
	}
	if err != nil {
		w.Header().Del("Content-Disposition")
		writeError(w, r, err)
		return
	}
	_, _ = buf.WriteTo(w)
}

type publishResponse struct {
	Range  string `json:"range"`
	Rows   int    `json:"rows"`
	Period string `json:"period"`
}

// handlePublishSheets writes the report of the selected month to the
// configured spreadsheet.
func (s *Server) handlePublishSheets(w http.ResponseWriter, r *http.Request) {
	if s.publisher == nil {
		ErrorResponse(r, http.StatusServiceUnavailable, "spreadsheet publishing is not configured").Write(w)
		return
	}
	month, txs, err := s.selectMonth(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	report, err := export.BuildReport(txs, month, s.ledger.Now(), s.formatter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows := report.Rows()
	ref, err := s.publisher.Publish(r.Context(), rows)
	if err != nil {
		writeError(w, r, fmt.Errorf("publish report: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, publishResponse{Range: ref, Rows: len(rows), Period: report.Period})
}

// handleChart renders categories.png or monthly.png.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	month, txs, err := s.selectMonth(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	switch r.PathValue("chart") {
	case "categories.png":
		typ, terr := parseType(r.URL.Query())
		if terr != nil {
			writeError(w, r, terr)
			return
		}
		selected, ferr := finance.FilterByMonth(txs, month)
		if ferr != nil {
			writeError(w, r, ferr)
			return
		}
		err = export.CategoryPie(&buf, finance.SummarizeByCategory(selected, typ), s.formatter)
	case "monthly.png":
		err = export.MonthlyBars(&buf, finance.SummarizeByMonth(txs))
	default:
		NotFoundError(r, "unknown chart").Write(w)
		return
	}
	if errors.Is(err, export.ErrNoData) {
		NotFoundError(r, err.Error()).Write(w)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = buf.WriteTo(w)
}
