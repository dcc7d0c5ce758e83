package domain

import "time"

// RunStatus is the terminal state of a pipeline run.
type RunStatus string

const (
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// Run is the persisted summary of one pipeline run.
type Run struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     RunStatus
	Tier       string // selected source tier, empty on failure
	Cutoff     string // YYYY-MM-DD

	TotalTrades    int
	TotalBuy       int
	TotalSell      int
	TotalConflicts int
	Duplicates     int
	WindowedOut    int

	Artifact []byte // published JSON, nil on failure
	Error    string // failure reason, empty on success
}

// RunTrade is a trade persisted as part of a run.
type RunTrade struct {
	RunID    string
	TradeID  string // idhash.ComputeTradeID over the dedup identity
	Position int    // rank in the run's newest-first order
	Trade    Trade
}
