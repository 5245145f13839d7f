package domain

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestImpermanentLoss(t *testing.T) {
	tests := []struct {
		name    string
		ratio   float64
		want    float64
		wantErr error
	}{
		{name: "unchanged_price", ratio: 1, want: 0},
		{name: "price_x4", ratio: 4, want: -20},
		{name: "price_div4_symmetric", ratio: 0.25, want: -20},
		{name: "price_x2", ratio: 2, want: -5.719095841793653},
		{name: "zero_ratio", ratio: 0, wantErr: ErrInvalidPriceRatio},
		{name: "negative_ratio", ratio: -1.5, wantErr: ErrInvalidPriceRatio},
		{name: "nan_ratio", ratio: math.NaN(), wantErr: ErrInvalidPriceRatio},
		{name: "inf_ratio", ratio: math.Inf(1), wantErr: ErrInvalidPriceRatio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ImpermanentLoss(tt.ratio)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ImpermanentLoss(%v) = %v, want %v", tt.ratio, got, tt.want)
			}
		})
	}
}

func TestSlippageLoss(t *testing.T) {
	tests := []struct {
		name     string
		expected float64
		actual   float64
		want     float64
		wantErr  bool
	}{
		{name: "one_percent_loss", expected: 100, actual: 99, want: 1},
		{name: "better_than_expected", expected: 100, actual: 102, want: -2},
		{name: "exact_fill", expected: 5.5, actual: 5.5, want: 0},
		{name: "zero_expected", expected: 0, actual: 1, wantErr: true},
		{name: "negative_expected", expected: -3, actual: 1, wantErr: true},
		{name: "nan_actual", expected: 1, actual: math.NaN(), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SlippageLoss(tt.expected, tt.actual)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("SlippageLoss(%v, %v) = %v, want %v", tt.expected, tt.actual, got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	txs := []Transaction{
		{ID: "a", ExpectedAmount: 100, ActualAmount: 99, Timestamp: ts},
		{ID: "b", ExpectedAmount: 100, ActualAmount: 97, Timestamp: ts},
		{ID: "c", ExpectedAmount: 100, ActualAmount: 101, Timestamp: ts},
		{ID: "d", ExpectedAmount: 0, ActualAmount: 1, Timestamp: ts},
	}

	reports := make([]TransactionReport, len(txs))
	for i, tx := range txs {
		reports[i] = tx.Report()
	}

	if reports[3].SlippageLoss != nil {
		t.Fatalf("unscored transaction got loss %v", *reports[3].SlippageLoss)
	}

	s := Summarize(reports)
	if s.Count != 4 || s.Scored != 3 {
		t.Fatalf("count/scored = %d/%d, want 4/3", s.Count, s.Scored)
	}
	if math.Abs(s.AverageLoss-1) > 1e-12 {
		t.Errorf("average = %v, want 1", s.AverageLoss)
	}
	if s.WorstID != "b" || math.Abs(s.WorstLoss-3) > 1e-12 {
		t.Errorf("worst = %s %v, want b 3", s.WorstID, s.WorstLoss)
	}
	if s.BetterThanQuoted != 1 {
		t.Errorf("better than quoted = %d, want 1", s.BetterThanQuoted)
	}
}

func TestScanReport_ImpactViolations(t *testing.T) {
	row := func(pair string, size, slip float64) ScanRow {
		r := ScanRow{Pair: pair, Size: size}
		r.TotalSlippage = slip
		return r
	}

	report := &ScanReport{Rows: []ScanRow{
		row("EDS/USDT", 10000, 9.4),
		row("EDS/USDT", 1, 0.12),
		row("EDS/USDT", 100, 0.22),
		row("USDT/VDEP", 1, 0.5),
		row("USDT/VDEP", 100, 0.3),
		{Pair: "EDS/BTC", Size: 1, Error: "unsupported pair"},
	}}

	got := report.ImpactViolations()
	if len(got) != 1 || got[0] != "USDT/VDEP" {
		t.Errorf("violations = %v, want [USDT/VDEP]", got)
	}
	if report.Failed() != 1 {
		t.Errorf("failed = %d, want 1", report.Failed())
	}
}
