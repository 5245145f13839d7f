package app

import (
	"context"
	"sort"

	"github.com/shahrookhpiray1/sliswap-loss-visualizer/business/loss/domain"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/apperror"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/logger"
)

// LossService exposes the loss metrics and the transaction history.
type LossService struct {
	store  TransactionStore
	logger logger.LoggerInterface
}

// NewLossService creates the service.
func NewLossService(store TransactionStore, log logger.LoggerInterface) *LossService {
	return &LossService{store: store, logger: log}
}

// ImpermanentLoss wraps domain.ImpermanentLoss with an app error.
func (s *LossService) ImpermanentLoss(ratio float64) (float64, error) {
	il, err := domain.ImpermanentLoss(ratio)
	if err != nil {
		return 0, apperror.New(apperror.CodeInvalidPriceRatio, apperror.WithCause(err))
	}
	return il, nil
}

// SlippageLoss wraps domain.SlippageLoss with an app error.
func (s *LossService) SlippageLoss(expected, actual float64) (float64, error) {
	loss, err := domain.SlippageLoss(expected, actual)
	if err != nil {
		return 0, apperror.New(apperror.CodeInvalidExpectedAmount, apperror.WithCause(err))
	}
	return loss, nil
}

// Transactions returns the history, newest first, each with its slippage loss.
func (s *LossService) Transactions(ctx context.Context) ([]domain.TransactionReport, domain.Summary, error) {
	txs, err := s.store.List(ctx)
	if err != nil {
		return nil, domain.Summary{}, apperror.Wrap(err, apperror.CodeTransactionsLoadFailed, "transaction store")
	}

	reports := make([]domain.TransactionReport, len(txs))
	for i, tx := range txs {
		reports[i] = tx.Report()
		if reports[i].SlippageLoss == nil {
			s.logger.Debug(ctx, "transaction has no usable expected amount", "id", tx.ID)
		}
	}
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].Timestamp.After(reports[j].Timestamp)
	})

	return reports, domain.Summarize(reports), nil
}
