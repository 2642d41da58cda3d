package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/crossbank/refunder/internal/domain"
	"github.com/crossbank/refunder/internal/engine"
	"github.com/crossbank/refunder/internal/ingestion"
	"github.com/crossbank/refunder/internal/repository"
)

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	engine        *engine.Engine
	caseRepo      *repository.CaseRepo
	accountRepo   *repository.AccountRepo
	statementRepo *repository.StatementRepo
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[api] encode error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return def
	}
	return v
}

func readFormFile(r *http.Request, field string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// --- ProcessCase ---

// ProcessCase accepts a multipart form with the pacs.004 and pacs.008
// documents plus the intake checklist, runs the case to a disposition and
// persists the report.
func (h *Handlers) ProcessCase(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	pacs004, err := readFormFile(r, "pacs004")
	if err != nil {
		writeError(w, http.StatusBadRequest, "pacs004 file is required: "+err.Error())
		return
	}
	pacs008, err := readFormFile(r, "pacs008")
	if err != nil {
		writeError(w, http.StatusBadRequest, "pacs008 file is required: "+err.Error())
		return
	}

	var flags domain.ChannelFlags
	if raw := r.FormValue("flags"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &flags); err != nil {
			writeError(w, http.StatusBadRequest, "invalid flags: "+err.Error())
			return
		}
	}

	pair, err := ingestion.ParsePair(pacs004, pacs008)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	report, err := h.engine.ProcessCase(engine.CaseInput{
		CaseRef:  r.FormValue("case_ref"),
		Return:   pair.Return,
		Original: pair.Original,
		Flags:    flags,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := h.caseRepo.Save(report); err != nil {
		log.Printf("[api] persist case %s: %v", report.CaseID, err)
		writeError(w, http.StatusInternalServerError, "persist case: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// --- ProcessBatch ---

// BatchCaseRequest is one case in a bulk submission, with the raw XML
// documents inlined.
type BatchCaseRequest struct {
	CaseRef string              `json:"case_ref"`
	Pacs004 string              `json:"pacs004"`
	Pacs008 string              `json:"pacs008"`
	Flags   domain.ChannelFlags `json:"flags"`
}

func (h *Handlers) ProcessBatch(w http.ResponseWriter, r *http.Request) {
	var reqs []BatchCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(reqs) == 0 {
		writeError(w, http.StatusBadRequest, "empty batch")
		return
	}

	inputs := make([]engine.CaseInput, 0, len(reqs))
	for i, req := range reqs {
		in := engine.CaseInput{CaseRef: req.CaseRef, Flags: req.Flags}
		pair, err := ingestion.ParsePair([]byte(req.Pacs004), []byte(req.Pacs008))
		if err != nil {
			// Unparseable cases still run; the engine reports them as
			// incomplete pairs instead of failing the whole batch.
			log.Printf("[api] batch item %d parse failed: %v", i, err)
		} else {
			in.Return = pair.Return
			in.Original = pair.Original
		}
		inputs = append(inputs, in)
	}

	result := h.engine.ProcessBatch(inputs)

	for _, report := range result.Reports {
		if err := h.caseRepo.Save(report); err != nil {
			log.Printf("[api] persist case %s: %v", report.CaseID, err)
		}
	}

	writeJSON(w, http.StatusOK, result)
}

// --- ListCases ---

func (h *Handlers) ListCases(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.CaseFilter{
		UETR:        q.Get("uetr"),
		Disposition: q.Get("disposition"),
		Page:        parseIntDefault(q.Get("page"), 1),
		Limit:       parseIntDefault(q.Get("limit"), 50),
	}

	cases, total, err := h.caseRepo.List(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"cases": cases,
		"total": total,
		"page":  filter.Page,
		"limit": filter.Limit,
	})
}

// --- GetCase ---

func (h *Handlers) GetCase(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	report, err := h.caseRepo.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if report == nil {
		writeError(w, http.StatusNotFound, "case not found")
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// --- ListAccounts ---

func (h *Handlers) ListAccounts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.AccountFilter{
		Type:     q.Get("type"),
		Currency: q.Get("currency"),
		Status:   q.Get("status"),
	}

	accounts, err := h.accountRepo.List(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"accounts": accounts,
		"total":    len(accounts),
	})
}

// --- ListStatements ---

func (h *Handlers) ListStatements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.StatementFilter{
		Ledger:   q.Get("ledger"),
		Currency: q.Get("currency"),
		Side:     q.Get("side"),
	}

	entries, err := h.statementRepo.List(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"total":   len(entries),
	})
}

// --- GetDashboard ---

func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.caseRepo.GetDispositionStats()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	accounts, err := h.accountRepo.Count()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	statements, err := h.statementRepo.Count()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"cases": map[string]int{
			"total":         stats.Total,
			"auto_refunded": stats.AutoRefunded,
			"manual_review": stats.ManualReview,
			"pending":       stats.Pending,
		},
		"accounts":          accounts,
		"statement_entries": statements,
	})
}
