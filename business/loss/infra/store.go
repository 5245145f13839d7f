// Package infra contains infrastructure adapters for the loss context.
package infra

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/shahrookhpiray1/sliswap-loss-visualizer/business/loss/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

//go:embed transactions.json
var defaultTransactions []byte

// FileStore lists transactions from a JSON array on disk, or from the
// bundled sample history when no path is set. The file is re-read on every
// call so edits show up without a restart.
type FileStore struct {
	path string
}

// NewFileStore creates a store for path. An empty path serves the bundled sample.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// List returns the recorded transactions.
func (s *FileStore) List(ctx context.Context) ([]domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := defaultTransactions
	if s.path != "" {
		b, err := os.ReadFile(s.path)
		if err != nil {
			return nil, fmt.Errorf("read transactions: %w", err)
		}
		data = b
	}

	var txs []domain.Transaction
	if err := json.Unmarshal(data, &txs); err != nil {
		return nil, fmt.Errorf("decode transactions %s: %w", s.source(), err)
	}
	return txs, nil
}

func (s *FileStore) source() string {
	if s.path == "" {
		return "(bundled)"
	}
	return s.path
}
