package store

import (
	"context"
)

type Querier interface {
	CreateTask(ctx context.Context, description string) (Task, error)
	CompleteTask(ctx context.Context, id int64) (bool, error)
	TaskPending(ctx context.Context, id int64) (bool, error)
	ListPending(ctx context.Context) ([]Task, error)
	ListRecent(ctx context.Context, n int) ([]Task, error)
	RecordDeferral(ctx context.Context, reason string) error
	AddLedgerEntry(ctx context.Context, kind LedgerKind, description string, amount float64) (LedgerEntry, error)
	GetBalance(ctx context.Context) (float64, error)
	ListRecentLedger(ctx context.Context, n int) ([]LedgerEntry, error)
	GetConfig(ctx context.Context, key string) (string, bool, error)
	SetConfig(ctx context.Context, key, value string) error
}

var _ Querier = (*Queries)(nil)
