package server

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/etnz/taxlot"
	"github.com/etnz/taxlot/renderer"
)

// ReportHandler handles realized gains reports.
type ReportHandler struct {
	service *Service
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(service *Service) *ReportHandler {
	return &ReportHandler{service: service}
}

// ReportResponse is a summary of the ledger.
type ReportResponse struct {
	Group    string       `json:"group"`
	Year     int          `json:"year,omitempty"`
	Rows     []taxlot.Row `json:"rows"`
	Warnings []string     `json:"warnings"`
}

// reportQuery parses the group and year query parameters.
func reportQuery(r *http.Request) (taxlot.GroupBy, int, error) {
	group := taxlot.ByInstrument
	if s := r.URL.Query().Get("group"); s != "" {
		var err error
		if group, err = taxlot.ParseGroupBy(s); err != nil {
			return 0, 0, err
		}
	}
	year := 0
	if s := r.URL.Query().Get("year"); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil || y <= 0 {
			return 0, 0, fmt.Errorf("invalid year %q", s)
		}
		year = y
	}
	return group, year, nil
}

// rows computes the summary rows of a report query.
func (h *ReportHandler) rows(group taxlot.GroupBy, year int) (*taxlot.Result, []taxlot.Row, error) {
	res, err := h.service.Result()
	if err != nil {
		return nil, nil, err
	}
	if year != 0 && group == taxlot.ByInstrument {
		// a year scope needs year rows.
		group = taxlot.ByInstrumentYear
	}
	rows := taxlot.Summarize(res, group)
	if year != 0 {
		rows = taxlot.FilterYear(rows, year)
	}
	return res, rows, nil
}

// Report handles GET requests returning summary rows.
//
// Endpoint: GET /api/report?group=instrument|year|global&year=YYYY
// Response: 200 OK with ReportResponse
// Error: 400 Bad Request for invalid parameters
func (h *ReportHandler) Report(w http.ResponseWriter, r *http.Request) {
	group, year, err := reportQuery(r)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "invalid report parameters", err.Error())
		return
	}
	res, rows, err := h.rows(group, year)
	if err != nil {
		RespondError(w, http.StatusInternalServerError, "failed to compute report", err.Error())
		return
	}
	if rows == nil {
		rows = []taxlot.Row{}
	}
	RespondJSON(w, http.StatusOK, ReportResponse{Group: group.String(), Year: year, Rows: rows, Warnings: warnings(res)})
}

// CSV handles GET requests returning the export table.
//
// Endpoint: GET /api/report.csv
// Response: 200 OK with a text/csv attachment
func (h *ReportHandler) CSV(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Result()
	if err != nil {
		RespondError(w, http.StatusInternalServerError, "failed to compute report", err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="export.csv"`)
	if err := taxlot.EncodeRowsCSV(w, taxlot.Export(res)); err != nil {
		log.Printf("failed to write export: %v", err)
	}
}

// HTML handles GET requests returning the report as a web page.
//
// Endpoint: GET /api/report.html?group=instrument|year|global&year=YYYY
// Response: 200 OK with a text/html page
// Error: 400 Bad Request for invalid parameters
func (h *ReportHandler) HTML(w http.ResponseWriter, r *http.Request) {
	group, year, err := reportQuery(r)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "invalid report parameters", err.Error())
		return
	}
	res, rows, err := h.rows(group, year)
	if err != nil {
		RespondError(w, http.StatusInternalServerError, "failed to compute report", err.Error())
		return
	}
	title := "Realized gains"
	if year != 0 {
		title = fmt.Sprintf("Realized gains %d", year)
	}
	body, err := renderer.HTML(renderer.ReportMarkdown(res, rows, title))
	if err != nil {
		RespondError(w, http.StatusInternalServerError, "failed to render report", err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, renderer.Page(title, body))
}
