// Package bolt archives built covenant transactions in a local bbolt file.
package bolt

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goodnatureofminers/covenant7000/internal/covenant/model"
	"go.etcd.io/bbolt"
)

var bucketTransactions = []byte("covenant_transactions")

var ErrEmptyPlanID = errors.New("plan id is required")

type Metrics interface {
	Observe(operation string, network model.Network, err error, started time.Time)
}

// Store keeps archived transactions keyed by network, plan and position, so a
// prefix scan returns a plan in order.
type Store struct {
	db      *bbolt.DB
	metrics Metrics
}

// Open opens or creates the database at path, creating parent directories.
func Open(path string, metrics Metrics) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketTransactions); err != nil {
			return fmt.Errorf("create bucket %q: %w", bucketTransactions, err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, metrics: metrics}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// InsertTransactions stores txs in a single write transaction. Records with
// the same key are replaced.
func (s *Store) InsertTransactions(_ context.Context, txs []model.ArchivedTransaction) error {
	start := time.Now()
	var err error
	defer func() {
		network := model.Network("")
		if len(txs) > 0 {
			network = txs[0].Network
		}
		s.metrics.Observe("insert_transactions", network, err, start)
	}()

	if len(txs) == 0 {
		return nil
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketTransactions)
		for _, record := range txs {
			if record.PlanID == "" {
				return fmt.Errorf("archive %s: %w", record.TxID, ErrEmptyPlanID)
			}
			var buf bytes.Buffer
			if err := gob.NewEncoder(&buf).Encode(record); err != nil {
				return fmt.Errorf("encode %s: %w", record.TxID, err)
			}
			if err := b.Put(recordKey(record), buf.Bytes()); err != nil {
				return fmt.Errorf("put %s: %w", record.TxID, err)
			}
		}
		return nil
	})
	return err
}

// PlanTransactions returns the archived transactions of a plan ordered by position.
func (s *Store) PlanTransactions(_ context.Context, network model.Network, planID string) ([]model.ArchivedTransaction, error) {
	start := time.Now()
	var err error
	defer func() {
		s.metrics.Observe("plan_transactions", network, err, start)
	}()

	if planID == "" {
		err = ErrEmptyPlanID
		return nil, err
	}

	var txs []model.ArchivedTransaction
	prefix := planPrefix(network, planID)
	err = s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketTransactions).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var record model.ArchivedTransaction
			if err := gob.NewDecoder(bytes.NewReader(v)).Decode(&record); err != nil {
				return fmt.Errorf("decode %x: %w", k, err)
			}
			txs = append(txs, record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txs, nil
}

func planPrefix(network model.Network, planID string) []byte {
	k := make([]byte, 0, len(network)+len(planID)+2)
	k = append(k, network...)
	k = append(k, 0)
	k = append(k, planID...)
	return append(k, 0)
}

func recordKey(record model.ArchivedTransaction) []byte {
	k := planPrefix(record.Network, record.PlanID)
	k = binary.BigEndian.AppendUint32(k, record.Position)
	return append(k, record.TxID...)
}
