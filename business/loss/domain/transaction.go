package domain

import "time"

// Transaction is a recorded swap with the amount quoted before execution
// and the amount actually received.
type Transaction struct {
	ID             string    `json:"id"`
	TokenPair      string    `json:"tokenPair"`
	Type           string    `json:"type"` // buy | sell | swap
	ExpectedAmount float64   `json:"expectedAmount"`
	ActualAmount   float64   `json:"actualAmount"`
	Timestamp      time.Time `json:"timestamp"`
}

// TransactionReport is a transaction with its slippage loss.
// Loss is nil when the expected amount was unusable.
type TransactionReport struct {
	Transaction
	SlippageLoss *float64 `json:"slippageLoss"`
}

// Report computes the slippage loss of tx.
func (tx Transaction) Report() TransactionReport {
	r := TransactionReport{Transaction: tx}
	if loss, err := SlippageLoss(tx.ExpectedAmount, tx.ActualAmount); err == nil {
		r.SlippageLoss = &loss
	}
	return r
}

// Summary aggregates transaction reports.
type Summary struct {
	Count            int     `json:"count"`
	Scored           int     `json:"scored"`
	AverageLoss      float64 `json:"averageLoss"`
	WorstLoss        float64 `json:"worstLoss"`
	WorstID          string  `json:"worstId,omitempty"`
	BetterThanQuoted int     `json:"betterThanQuoted"`
}

// Summarize averages the scored reports and finds the worst one.
func Summarize(reports []TransactionReport) Summary {
	s := Summary{Count: len(reports)}
	var total float64
	for _, r := range reports {
		if r.SlippageLoss == nil {
			continue
		}
		loss := *r.SlippageLoss
		if s.Scored == 0 || loss > s.WorstLoss {
			s.WorstLoss = loss
			s.WorstID = r.ID
		}
		if loss < 0 {
			s.BetterThanQuoted++
		}
		total += loss
		s.Scored++
	}
	if s.Scored > 0 {
		s.AverageLoss = total / float64(s.Scored)
	}
	return s
}
