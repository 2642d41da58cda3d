package engine

import (
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/crossbank/refunder/internal/domain"
)

// BatchResult summarises one bulk invocation.
type BatchResult struct {
	BatchID    string               `json:"batch_id"`
	Total      int                  `json:"total"`
	Succeeded  int                  `json:"succeeded"`
	Failed     int                  `json:"failed"`
	Reports    []*domain.CaseReport `json:"reports"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt time.Time            `json:"finished_at"`
}

// ProcessBatch runs cases strictly sequentially in submission order. One
// case failing does not stop the batch; its report carries the error and
// the counter reflects it. Sequential execution also preserves the
// executor's per-account ordering guarantee across cases.
func (e *Engine) ProcessBatch(inputs []CaseInput) *BatchResult {
	res := &BatchResult{
		BatchID:   uuid.NewString(),
		Total:     len(inputs),
		Reports:   make([]*domain.CaseReport, 0, len(inputs)),
		StartedAt: e.now(),
	}

	for _, in := range inputs {
		report, err := e.ProcessCase(in)
		if err != nil || report.Error != "" {
			res.Failed++
		} else {
			res.Succeeded++
		}
		res.Reports = append(res.Reports, report)
	}

	res.FinishedAt = e.now()
	log.Printf("[engine] batch %s done: %d/%d succeeded, %d failed",
		res.BatchID, res.Succeeded, res.Total, res.Failed)
	return res
}
