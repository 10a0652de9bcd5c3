package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/etnz/taxlot"
	"github.com/go-chi/chi/v5"
)

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	service *Service
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(service *Service) *TransactionHandler {
	return &TransactionHandler{service: service}
}

// RejectedRecord describes a record refused at ingestion.
type RejectedRecord struct {
	Index  int    `json:"index"`
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}

// ImportResponse is the response of an import.
type ImportResponse struct {
	IDs      []int            `json:"ids"`
	Rejected []RejectedRecord `json:"rejected"`
}

// Create handles POST requests importing a JSON document of raw records.
// The optional path query parameter is a jsonpath expression selecting the
// records in the document.
//
// Endpoint: POST /api/transactions
// Response: 201 Created with ImportResponse
// Error: 400 Bad Request if the document cannot be decoded
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	records, err := taxlot.DecodeRecordsJSON(r.Body, r.URL.Query().Get("path"))
	if err != nil {
		RespondError(w, http.StatusBadRequest, "invalid trades document", err.Error())
		return
	}
	h.importRecords(w, r, records)
}

// CreateCSV handles POST requests importing a CSV table of raw records.
//
// Endpoint: POST /api/transactions/csv
// Response: 201 Created with ImportResponse
// Error: 400 Bad Request if the table cannot be decoded
func (h *TransactionHandler) CreateCSV(w http.ResponseWriter, r *http.Request) {
	records, err := taxlot.DecodeRecordsCSV(r.Body)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "invalid trades table", err.Error())
		return
	}
	h.importRecords(w, r, records)
}

// CreateHTML handles POST requests importing the trades of an HTML activity
// statement.
//
// Endpoint: POST /api/transactions/html
// Response: 201 Created with ImportResponse
// Error: 400 Bad Request if the statement has no trades table
func (h *TransactionHandler) CreateHTML(w http.ResponseWriter, r *http.Request) {
	records, err := taxlot.DecodeRecordsHTML(r.Body)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "invalid statement", err.Error())
		return
	}
	h.importRecords(w, r, records)
}

func (h *TransactionHandler) importRecords(w http.ResponseWriter, r *http.Request, records []taxlot.RawRecord) {
	ids, err := h.service.Import(r.Context(), records)
	rejected := rejections(err)
	if err != nil && len(rejected) == 0 {
		RespondError(w, http.StatusInternalServerError, "failed to import transactions", err.Error())
		return
	}
	if ids == nil {
		ids = []int{}
	}
	RespondJSON(w, http.StatusCreated, ImportResponse{IDs: ids, Rejected: rejected})
}

// rejections lists the *taxlot.RecordError joined in err.
func rejections(err error) []RejectedRecord {
	rejected := []RejectedRecord{}
	if err == nil {
		return rejected
	}
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}
	for _, e := range errs {
		var recErr *taxlot.RecordError
		if errors.As(e, &recErr) {
			rejected = append(rejected, RejectedRecord{Index: recErr.Index, Symbol: recErr.Symbol, Error: recErr.Err.Error()})
		}
	}
	return rejected
}

// ListResponse is the matched state of the ledger.
type ListResponse struct {
	Version      uint64          `json:"version"`
	Home         string          `json:"home"`
	Transactions []taxlot.Match  `json:"transactions"`
	Pairs        []taxlot.Pair   `json:"pairs"`
	Gaps         map[string]bool `json:"gaps"`
	Warnings     []string        `json:"warnings"`
}

// List handles GET requests returning every transaction with its match state.
//
// Endpoint: GET /api/transactions
// Response: 200 OK with ListResponse
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Result()
	if err != nil {
		RespondError(w, http.StatusInternalServerError, "failed to compute matches", err.Error())
		return
	}
	resp := ListResponse{
		Version:      res.Version,
		Home:         res.Home,
		Transactions: res.Matches,
		Pairs:        res.Pairs,
		Gaps:         res.Gaps,
		Warnings:     warnings(res),
	}
	if resp.Pairs == nil {
		resp.Pairs = []taxlot.Pair{}
	}
	RespondJSON(w, http.StatusOK, resp)
}

// Delete handles DELETE requests removing a transaction.
//
// Endpoint: DELETE /api/transactions/{id}
// Response: 204 No Content
// Error: 400 Bad Request for a malformed id, 404 Not Found for an unknown one
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		RespondError(w, http.StatusBadRequest, "invalid transaction id", chi.URLParam(r, "id"))
		return
	}
	if err := h.service.Remove(r.Context(), id); err != nil {
		if errors.Is(err, taxlot.ErrTransactionNotFound) {
			RespondError(w, http.StatusNotFound, "transaction not found", err.Error())
			return
		}
		RespondError(w, http.StatusInternalServerError, "failed to delete transaction", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func warnings(res *taxlot.Result) []string {
	list := make([]string, len(res.Warnings))
	for i, w := range res.Warnings {
		list[i] = w.Error()
	}
	return list
}
