package model

// CycleRecord is the outcome of one completed withdrawal step.
type CycleRecord struct {
	Index             int   `json:"index" csv:"index"` // 1-based
	AvailableBefore   int64 `json:"available_before" csv:"available_before"`
	AmountReplenished int64 `json:"amount_replenished" csv:"amount_replenished"`
	AmountWithdrawn   int64 `json:"amount_withdrawn" csv:"amount_withdrawn"`
	AvailableAfter    int64 `json:"available_after" csv:"available_after"`
}

// Mode names which run operation produced a result.
type Mode string

const (
	ModeDepletion     Mode = "depletion"
	ModeReplenishment Mode = "replenishment"
	ModeTarget        Mode = "target"
)

// Summary holds the final figures of a run.
type Summary struct {
	Mode             Mode    `json:"mode"`
	StopReason       State   `json:"stop_reason"`
	Steps            int     `json:"steps"`
	CapacityMax      int64   `json:"capacity_max"`
	InitialAvailable int64   `json:"initial_available"`
	FinalAvailable   int64   `json:"final_available"`
	ConsumedTotal    int64   `json:"consumed_total"`
	ReplenishedTotal int64   `json:"replenished_total"`
	PercentRemaining float64 `json:"percent_remaining"`

	// Only meaningful for ModeTarget.
	Target         int64 `json:"target,omitempty"`
	TotalWithdrawn int64 `json:"total_withdrawn"`
	TargetMet      bool  `json:"target_met"`
}

// RunResult is the complete output of a simulation run.
type RunResult struct {
	Records []CycleRecord
	Summary Summary
}

// WithdrawnSum adds up AmountWithdrawn across all records.
func (r *RunResult) WithdrawnSum() int64 {
	var sum int64
	for _, rec := range r.Records {
		sum += rec.AmountWithdrawn
	}
	return sum
}
