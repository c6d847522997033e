package store

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
)

func (q *Queries) AddLedgerEntry(ctx context.Context, kind LedgerKind, description string, amount float64) (LedgerEntry, error) {
	e := &LedgerEntry{
		Kind:        kind,
		Description: description,
		Amount:      amount,
	}
	err := q.db.WithContext(ctx).Create(e).Error
	if err != nil {
		return LedgerEntry{}, errors.WithMessage(err, "add ledger entry error")
	}
	return *e, nil
}

// GetBalance computes initial_balance + sum(credits) - sum(debits). A
// missing initial_balance config counts as zero.
func (q *Queries) GetBalance(ctx context.Context) (float64, error) {
	initial := 0.0
	raw, ok, err := q.GetConfig(ctx, KeyInitialBalance)
	if err != nil {
		return 0, err
	}
	if ok {
		initial, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, errors.WithMessagef(err, "invalid %s config value %q", KeyInitialBalance, raw)
		}
	}

	var credits, debits float64
	err = q.db.WithContext(ctx).Model(&LedgerEntry{}).
		Where("kind = ?", KindCredit).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&credits).Error
	if err != nil {
		return 0, errors.WithMessage(err, "sum credits error")
	}
	err = q.db.WithContext(ctx).Model(&LedgerEntry{}).
		Where("kind = ?", KindDebit).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&debits).Error
	if err != nil {
		return 0, errors.WithMessage(err, "sum debits error")
	}
	return initial + credits - debits, nil
}

func (q *Queries) ListRecentLedger(ctx context.Context, n int) ([]LedgerEntry, error) {
	var entries []LedgerEntry
	err := q.db.WithContext(ctx).
		Order("id DESC").
		Limit(n).
		Find(&entries).Error
	return entries, err
}
