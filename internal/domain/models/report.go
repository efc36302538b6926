package models

import "time"

// Regime labels for the macro assessment.
const (
	RegimeRiskOn  = "Risk-On"
	RegimeRiskOff = "Risk-Off"
	RegimeNeutral = "Neutral"
	RegimeUnknown = "Unknown"
)

// MacroAssessment is the scored risk regime for one run.
type MacroAssessment struct {
	Score   int      `json:"score"` // always in [0,100]
	Regime  string   `json:"regime"`
	Signals []string `json:"signals,omitempty"` // which configured signals applied
}

// BasketReport scores one narrative basket. DataError marks baskets with no
// usable members this run; Mean/Strength/Velocity are meaningless then.
type BasketReport struct {
	Name      string  `json:"name"`
	Members   int     `json:"members"` // members with a defined 7d change
	Mean7d    float64 `json:"mean_7d"`
	Strength  string  `json:"strength"`
	Velocity  string  `json:"velocity"`
	DataError bool    `json:"data_error,omitempty"`
}

// Holding performance classes for the exposure summary.
const (
	HoldingContributor = "Contributor"
	HoldingDrag        = "Drag"
	HoldingNeutral     = "Neutral"
)

// HoldingReview classifies one held asset's 7-day performance.
type HoldingReview struct {
	Symbol   string   `json:"symbol"`
	Weight   float64  `json:"weight"`
	Change7d *float64 `json:"change_7d,omitempty"`
	Class    string   `json:"class"`
}

// BucketExposure aggregates held weight by narrative/category bucket.
type BucketExposure struct {
	Bucket string  `json:"bucket"`
	Weight float64 `json:"weight"`       // summed weight percent
	Share  float64 `json:"share"`        // fraction of tracked weight
	Over   bool    `json:"over,omitempty"` // share at or above the overexposure threshold
}

// ExposureSummary is the aggregate portfolio risk view for one run.
type ExposureSummary struct {
	Holdings     []HoldingReview  `json:"holdings,omitempty"`
	HighExposure []string         `json:"high_exposure,omitempty"`
	DragCount    int              `json:"drag_count"`
	DragFlag     bool             `json:"drag_flag"` // drags >= max(2, held/2)
	Buckets      []BucketExposure `json:"buckets,omitempty"`
}

// RunReport is everything one scan produced, merged by the composer and kept
// for the ops status endpoint.
type RunReport struct {
	At        time.Time       `json:"at"`
	Macro     MacroAssessment `json:"macro"`
	Baskets   []BasketReport  `json:"baskets"`
	Exposure  ExposureSummary `json:"exposure"`
	Alerts    []Alert         `json:"alerts,omitempty"`
	DataError bool            `json:"data_error,omitempty"` // provider degraded this run
}

// Fired reports whether any detector produced an alert this run.
func (r *RunReport) Fired() bool {
	return len(r.Alerts) > 0
}
