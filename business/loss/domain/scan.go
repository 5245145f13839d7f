package domain

import (
	"sort"
	"time"

	swapDomain "github.com/shahrookhpiray1/sliswap-loss-visualizer/business/swap/domain"
)

// ScanRow is one pair priced at one trade size.
type ScanRow struct {
	Pair  string  `json:"pair"`
	Route string  `json:"route"`
	Size  float64 `json:"size"`
	swapDomain.SwapResult
	Error string `json:"error,omitempty"`
}

// OK reports whether the row priced successfully.
func (r ScanRow) OK() bool {
	return r.Error == ""
}

// ScanReport is the result of one scanner pass.
type ScanReport struct {
	Timestamp time.Time     `json:"timestamp"`
	Source    string        `json:"source"`
	Duration  time.Duration `json:"duration"`
	Rows      []ScanRow     `json:"rows"`
}

// Failed counts rows that returned an error.
func (r *ScanReport) Failed() int {
	n := 0
	for _, row := range r.Rows {
		if !row.OK() {
			n++
		}
	}
	return n
}

// ImpactViolations returns the pairs whose total slippage decreases as trade
// size grows. A constant-product pool never produces any.
func (r *ScanReport) ImpactViolations() []string {
	byPair := make(map[string][]ScanRow)
	for _, row := range r.Rows {
		if row.OK() {
			byPair[row.Pair] = append(byPair[row.Pair], row)
		}
	}

	var out []string
	for pair, rows := range byPair {
		sort.Slice(rows, func(i, j int) bool { return rows[i].Size < rows[j].Size })
		for i := 1; i < len(rows); i++ {
			if rows[i].TotalSlippage < rows[i-1].TotalSlippage {
				out = append(out, pair)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}
