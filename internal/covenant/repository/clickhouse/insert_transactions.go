package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/covenant7000/internal/covenant/model"
)

func insertTransactionsQuery() string {
	return `
INSERT INTO covenant_transactions (
	network,
	plan_id,
	stage,
	position,
	txid,
	raw_hex,
	size,
	input_count,
	output_count,
	created_at
) VALUES`
}

// InsertTransactions stores built transactions in ClickHouse.
func (r *Repository) InsertTransactions(ctx context.Context, txs []model.ArchivedTransaction) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("insert_transactions", firstNetwork(txs), err, start)
	}()

	if len(txs) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, insertTransactionsQuery())
	if err != nil {
		return fmt.Errorf("prepare covenant transactions batch: %w", err)
	}

	for _, tx := range txs {
		if err = batch.Append(
			string(tx.Network),
			tx.PlanID,
			tx.Stage,
			tx.Position,
			tx.TxID,
			tx.RawHex,
			tx.Size,
			tx.InputCount,
			tx.OutputCount,
			tx.CreatedAt,
		); err != nil {
			return fmt.Errorf("append covenant transaction %s: %w", tx.TxID, err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert covenant transactions: %w", err)
	}
	return nil
}
