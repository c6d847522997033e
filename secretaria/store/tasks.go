package store

import (
	"context"

	"github.com/pkg/errors"
)

func (q *Queries) CreateTask(ctx context.Context, description string) (Task, error) {
	t := &Task{
		Description: description,
		Status:      TaskPending,
	}
	err := q.db.WithContext(ctx).Create(t).Error
	if err != nil {
		return Task{}, errors.WithMessage(err, "create task error")
	}
	return *t, nil
}

// CompleteTask moves a pending task to completed and clears its deferral
// reason. Returns false when no pending task matches id; that is not an
// error.
func (q *Queries) CompleteTask(ctx context.Context, id int64) (bool, error) {
	res := q.db.WithContext(ctx).Model(&Task{}).
		Where("id = ? AND status = ?", id, TaskPending).
		Updates(map[string]interface{}{
			"status":          TaskCompleted,
			"deferral_reason": nil,
		})
	if res.Error != nil {
		return false, errors.WithMessage(res.Error, "complete task error")
	}
	return res.RowsAffected > 0, nil
}

// TaskPending reports whether id refers to a task that is still pending.
func (q *Queries) TaskPending(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := q.db.WithContext(ctx).Model(&Task{}).
		Where("id = ? AND status = ?", id, TaskPending).
		Count(&count).Error
	if err != nil {
		return false, errors.WithMessage(err, "task status check error")
	}
	return count > 0, nil
}

func (q *Queries) ListPending(ctx context.Context) ([]Task, error) {
	var tasks []Task
	err := q.db.WithContext(ctx).
		Where("status = ?", TaskPending).
		Order("id ASC").
		Find(&tasks).Error
	return tasks, err
}

func (q *Queries) ListRecent(ctx context.Context, n int) ([]Task, error) {
	var tasks []Task
	err := q.db.WithContext(ctx).
		Order("id DESC").
		Limit(n).
		Find(&tasks).Error
	return tasks, err
}

// RecordDeferral stamps reason onto every currently pending task.
func (q *Queries) RecordDeferral(ctx context.Context, reason string) error {
	err := q.db.WithContext(ctx).Model(&Task{}).
		Where("status = ?", TaskPending).
		Update("deferral_reason", reason).Error
	return errors.WithMessage(err, "record deferral error")
}
