package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Latencies is the ordered sequence of probe latencies in milliseconds,
// one entry per completed probe in the order the probes were issued.
type Latencies []int64

// String renders the literal sequence form, e.g. "[12 15 9]".
func (l Latencies) String() string {
	return fmt.Sprint([]int64(l))
}

// MarshalJSON always emits an array; an empty run is [] rather than null.
func (l Latencies) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]int64(l))
}

type RunID string

// RunReport is produced only for runs where every probe succeeded.
type RunReport struct {
	RunID          RunID     `json:"run_id"`
	URL            string    `json:"url"`
	ExpectedStatus int       `json:"expected_status"`
	Count          int       `json:"count"`
	Latencies      Latencies `json:"latencies_ms"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
}
