package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/covenant7000/internal/covenant/model"
)

// PlanTransactions returns the archived transactions of a plan ordered by position.
func (r *Repository) PlanTransactions(ctx context.Context, network model.Network, planID string) ([]model.ArchivedTransaction, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("plan_transactions", network, err, start)
	}()

	const query = `
SELECT
	stage,
	position,
	txid,
	raw_hex,
	size,
	input_count,
	output_count,
	created_at
FROM covenant_transactions FINAL
WHERE network = ? AND plan_id = ?
ORDER BY position ASC, txid ASC`

	rows, err := r.conn.Query(ctx, query, string(network), planID)
	if err != nil {
		return nil, fmt.Errorf("query plan transactions: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", cerr)
		}
	}()

	var txs []model.ArchivedTransaction
	for rows.Next() {
		tx := model.ArchivedTransaction{Network: network, PlanID: planID}
		if err = rows.Scan(
			&tx.Stage,
			&tx.Position,
			&tx.TxID,
			&tx.RawHex,
			&tx.Size,
			&tx.InputCount,
			&tx.OutputCount,
			&tx.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan plan transaction: %w", err)
		}
		txs = append(txs, tx)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plan transactions: %w", err)
	}

	return txs, nil
}
