package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnauthorized indicates a missing or wrong job token and no valid session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrJobInProgress indicates that another run of the same job holds the lock.
	ErrJobInProgress = errors.New("job already in progress")
)

// Job names.
const (
	JobInterestAccrual = "interest-accrual"
	JobClosePrice      = "close-price"
)

// RunParams is the input of one engine invocation.
type RunParams struct {
	// Now is the instant the run is evaluated at.
	Now time.Time
	// AssetID restricts the run to one asset when set.
	AssetID *int64
}

// ChangeEntry describes one applied valuation step.
type ChangeEntry struct {
	AssetID int64           `json:"asset_id"`
	Before  decimal.Decimal `json:"before"`
	After   decimal.Decimal `json:"after"`
	Diff    decimal.Decimal `json:"diff"`
	At      time.Time       `json:"at"`
}

// Skip reasons.
const (
	SkipAlreadyApplied = "already_applied"
	SkipNoHoldings     = "no_holdings"
	SkipStaleAmount    = "stale_amount"
)

// SkippedAsset is an asset left untouched by a run.
type SkippedAsset struct {
	AssetID int64  `json:"asset_id"`
	Reason  string `json:"reason"`
}

// FailedAsset is an asset whose update failed; it stays eligible for the next run.
type FailedAsset struct {
	AssetID int64     `json:"asset_id"`
	Day     time.Time `json:"day"`
	Error   string    `json:"error"`
}

// RunResult aggregates the outcome of one engine invocation.
type RunResult struct {
	Processed int            `json:"processed"`
	IDs       []int64        `json:"ids"`
	Changes   []ChangeEntry  `json:"changes"`
	Skipped   []SkippedAsset `json:"skipped"`
	Failures  []FailedAsset  `json:"failures"`
	// Unpriced lists the holding symbols that had no quote, by asset id.
	Unpriced map[int64][]string `json:"unpriced,omitempty"`
}

// NewRunResult returns an empty result with non-nil lists.
func NewRunResult() RunResult {
	return RunResult{
		IDs:      []int64{},
		Changes:  []ChangeEntry{},
		Skipped:  []SkippedAsset{},
		Failures: []FailedAsset{},
	}
}

// CandidatesResult is the dry run view of a job.
type CandidatesResult struct {
	Count      int       `json:"candidates_count"`
	Candidates []Asset   `json:"candidates"`
	TodayStart time.Time `json:"today_start"`
	TodayEnd   time.Time `json:"today_end"`
}
