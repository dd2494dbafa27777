package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	RemarksDeposit    = "Deposit"
	RemarksWithdrawal = "Withdrawal"
)

// Transaction is an immutable ledger record. Exactly one of CreditAmount and
// DebitAmount is non-zero.
type Transaction struct {
	ID               uuid.UUID
	CustomerID       uuid.UUID
	TransactionDate  time.Time
	Remarks          string
	CreditAmount     int64
	DebitAmount      int64
	ResultingBalance int64
	CreatedAt        time.Time
}

// DateRange bounds are inclusive. A nil bound is open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

func (r DateRange) IsZero() bool {
	return r.From == nil && r.To == nil
}

type Totals struct {
	TotalCredit int64
	TotalDebit  int64
}
