package service

import (
	"context"
	"time"

	"github.com/goodnatureofminers/covenant7000/internal/covenant/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Metrics interface {
		Observe(operation string, network model.Network, err error, started time.Time)
		ObserveTransactions(operation string, network model.Network, count int)
	}
	ArchiveRepository interface {
		InsertTransactions(ctx context.Context, txs []model.ArchivedTransaction) error
		PlanTransactions(ctx context.Context, network model.Network, planID string) ([]model.ArchivedTransaction, error)
	}
)
