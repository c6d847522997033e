package store

import (
	"github.com/hatcher/secretaria/pkg/ormx"
)

type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
)

type LedgerKind string

const (
	KindCredit LedgerKind = "credit"
	KindDebit  LedgerKind = "debit"
)

// Config keys written once by onboarding.
const (
	KeyInitialBalance = "initial_balance"
	KeyFinancialGoal  = "financial_goal"
)

// Task is a to-do item with a pending/completed lifecycle. DeferralReason is
// set only through a check-in response and cleared on completion.
type Task struct {
	ormx.BaseModel
	Description    string     `json:"description" gorm:"column:description;type:varchar(2000);not null"`
	Status         TaskStatus `json:"status" gorm:"column:status;type:varchar(20);not null;index"`
	DeferralReason *string    `json:"deferralReason" gorm:"column:deferral_reason;type:varchar(2000)"`
}

func (t *Task) TableName() string {
	return "tasks"
}

// LedgerEntry is an immutable credit or debit record.
type LedgerEntry struct {
	ormx.BaseModel
	Kind        LedgerKind `json:"kind" gorm:"column:kind;type:varchar(10);not null;index"`
	Description string     `json:"description" gorm:"column:description;type:varchar(2000);not null"`
	Amount      float64    `json:"amount" gorm:"column:amount;type:decimal(14,2);not null"`
}

func (l *LedgerEntry) TableName() string {
	return "ledger_entries"
}

// ConfigEntry is a key/value row; keys are unique and written at most once.
type ConfigEntry struct {
	ormx.BaseModel
	Key   string `json:"key" gorm:"column:config_key;type:varchar(255);not null;uniqueIndex"`
	Value string `json:"value" gorm:"column:config_value;type:varchar(2000);not null"`
}

func (c *ConfigEntry) TableName() string {
	return "config_entries"
}
