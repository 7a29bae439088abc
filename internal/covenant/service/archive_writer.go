package service

import (
	"context"
	"fmt"

	"github.com/goodnatureofminers/covenant7000/internal/covenant/model"
	"github.com/goodnatureofminers/covenant7000/pkg/batcher"
	"go.uber.org/zap"
)

// ArchiveWriter batches archive inserts in the background. Reads go straight
// to the repository, so a plan may be missing until its batch is flushed.
type ArchiveWriter struct {
	repo    ArchiveRepository
	batcher *batcher.Batcher[model.ArchivedTransaction]
}

func NewArchiveWriter(logger *zap.Logger, repo ArchiveRepository, cfg batcher.Config) *ArchiveWriter {
	return &ArchiveWriter{
		repo:    repo,
		batcher: batcher.New(logger.Named("archive_writer"), repo.InsertTransactions, cfg),
	}
}

func (w *ArchiveWriter) Start(ctx context.Context) { w.batcher.Start(ctx) }

// Stop flushes queued records and waits for the writer to exit.
func (w *ArchiveWriter) Stop() { w.batcher.Stop() }

func (w *ArchiveWriter) InsertTransactions(ctx context.Context, txs []model.ArchivedTransaction) error {
	for _, tx := range txs {
		if err := w.batcher.Add(ctx, tx); err != nil {
			return fmt.Errorf("queue %s: %w", tx.TxID, err)
		}
	}
	return nil
}

func (w *ArchiveWriter) PlanTransactions(ctx context.Context, network model.Network, planID string) ([]model.ArchivedTransaction, error) {
	return w.repo.PlanTransactions(ctx, network, planID)
}
