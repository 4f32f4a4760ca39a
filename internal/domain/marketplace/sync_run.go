package marketplace

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/marketsync/backend/internal/domain/shared"
)

// SyncRunStatus represents the outcome of one pull run
type SyncRunStatus string

const (
	// SyncRunStatusSuccess means the run finished without errors
	SyncRunStatusSuccess SyncRunStatus = "SUCCESS"
	// SyncRunStatusPartial means the run finished with per-order errors
	SyncRunStatusPartial SyncRunStatus = "PARTIAL"
	// SyncRunStatusFailed means the run aborted before finishing
	SyncRunStatusFailed SyncRunStatus = "FAILED"
)

// SyncRun is the persisted summary of one pull run, kept for operator
// review of counts and per-order error messages.
type SyncRun struct {
	shared.StoreAggregateRoot
	// StartedAt is when the run began
	StartedAt time.Time `gorm:"not null"`
	// FinishedAt is when the run ended
	FinishedAt time.Time
	// TotalPulled is how many remote orders the run saw
	TotalPulled int
	// TotalCreated is how many local orders the run created
	TotalCreated int
	// Status summarizes the outcome
	Status SyncRunStatus `gorm:"type:varchar(16);not null"`
	// Errors holds per-order error messages collected during the run
	Errors StringSlice `gorm:"type:text"`
}

// TableName returns the database table name
func (SyncRun) TableName() string {
	return "marketplace_sync_runs"
}

// NewSyncRun starts a run record for a store
func NewSyncRun(storeID uuid.UUID) *SyncRun {
	return &SyncRun{
		StoreAggregateRoot: shared.NewStoreAggregateRoot(storeID),
		StartedAt:          time.Now(),
		Status:             SyncRunStatusFailed,
	}
}

// Finish records the run outcome
func (r *SyncRun) Finish(pulled, created int, errs []string) {
	r.FinishedAt = time.Now()
	r.TotalPulled = pulled
	r.TotalCreated = created
	r.Errors = errs
	if len(errs) == 0 {
		r.Status = SyncRunStatusSuccess
	} else {
		r.Status = SyncRunStatusPartial
	}
	r.MarkUpdated()
}

// SyncRunRepository persists sync run summaries
type SyncRunRepository interface {
	// Save inserts or updates a run record
	Save(ctx context.Context, run *SyncRun) error

	// ListRecent returns the most recent runs for a store, newest first
	ListRecent(ctx context.Context, storeID uuid.UUID, limit int) ([]SyncRun, error)
}
