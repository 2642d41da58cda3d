package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/crossbank/refunder/internal/domain"
)

// CaseRepo persists finished case reports. The full report is stored as JSON;
// the columns alongside it exist only so the API can filter without
// unmarshalling every row.
type CaseRepo struct {
	db *sql.DB
}

func NewCaseRepo(db *sql.DB) *CaseRepo {
	return &CaseRepo{db: db}
}

func (r *CaseRepo) Save(report *domain.CaseReport) error {
	blob, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	_, err = r.db.Exec(
		`INSERT INTO cases (id, uetr, disposition, review_reason, report, processed_at)
		VALUES (?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			disposition = excluded.disposition,
			review_reason = excluded.review_reason,
			report = excluded.report,
			processed_at = excluded.processed_at`,
		report.CaseID, report.UETR, string(report.Disposition),
		report.ReviewReason, string(blob), report.ProcessedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save case: %w", err)
	}
	return nil
}

func (r *CaseRepo) GetByID(id string) (*domain.CaseReport, error) {
	var blob string
	err := r.db.QueryRow("SELECT report FROM cases WHERE id = ?", id).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query case: %w", err)
	}
	return unmarshalReport(blob)
}

type CaseFilter struct {
	UETR        string
	Disposition string
	Page        int
	Limit       int
}

func (r *CaseRepo) List(f CaseFilter) ([]domain.CaseReport, int, error) {
	var clauses []string
	var args []any
	if f.UETR != "" {
		clauses = append(clauses, "uetr = ?")
		args = append(args, f.UETR)
	}
	if f.Disposition != "" {
		clauses = append(clauses, "disposition = ?")
		args = append(args, f.Disposition)
	}

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM cases"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}

	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	offset := (f.Page - 1) * f.Limit

	query := "SELECT report FROM cases" + where + " ORDER BY processed_at DESC LIMIT ? OFFSET ?"
	args = append(args, f.Limit, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var reports []domain.CaseReport
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, 0, fmt.Errorf("scan: %w", err)
		}
		report, err := unmarshalReport(blob)
		if err != nil {
			return nil, 0, err
		}
		reports = append(reports, *report)
	}
	return reports, total, rows.Err()
}

// DispositionStats holds aggregate case counts for the dashboard.
type DispositionStats struct {
	Total        int `json:"total"`
	AutoRefunded int `json:"auto_refunded"`
	ManualReview int `json:"manual_review"`
	Pending      int `json:"pending"`
}

func (r *CaseRepo) GetDispositionStats() (*DispositionStats, error) {
	s := &DispositionStats{}
	err := r.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN disposition = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN disposition = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN disposition = ? THEN 1 ELSE 0 END), 0)
		FROM cases`,
		string(domain.DispositionAutoRefund),
		string(domain.DispositionManualReview),
		string(domain.DispositionPendingNDays),
	).Scan(&s.Total, &s.AutoRefunded, &s.ManualReview, &s.Pending)
	return s, err
}

func unmarshalReport(blob string) (*domain.CaseReport, error) {
	var report domain.CaseReport
	if err := json.Unmarshal([]byte(blob), &report); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &report, nil
}
