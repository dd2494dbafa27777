package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/josh-kwaku/bank-backoffice/internal/domain"
	"github.com/josh-kwaku/bank-backoffice/internal/logging"
)

type TransferRequest struct {
	FromID  uuid.UUID
	ToID    uuid.UUID
	Amount  int64
	Remarks string
}

type TransferResult struct {
	SenderBalance   int64
	ReceiverBalance int64
	Debit           domain.Transaction
	Credit          domain.Transaction
}

// Transfer moves amount between two customers. Both balance writes and both
// records commit together or not at all.
func (s *Service) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	if err := validateTransfer(req); err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}

	var result *TransferResult
	err := s.run(ctx, "transfer", func(ctx context.Context) error {
		var err error
		result, err = s.executeTransfer(ctx, req)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}

	logging.FromContext(ctx).Info("transfer completed",
		"sender_id", req.FromID,
		"receiver_id", req.ToID,
		"amount", req.Amount,
		"debit_id", result.Debit.ID,
		"credit_id", result.Credit.ID,
	)
	return result, nil
}

func validateTransfer(req TransferRequest) error {
	if req.Amount <= 0 {
		return fmt.Errorf("validateTransfer: %w", domain.ErrInvalidAmount)
	}
	if req.FromID == req.ToID {
		return fmt.Errorf("validateTransfer: %w", domain.ErrSameAccountTransfer)
	}
	return nil
}

func (s *Service) executeTransfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	var result *TransferResult
	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		locked, err := s.lockInOrder(ctx, tx, req)
		if err != nil {
			return err
		}
		sender, receiver := locked[req.FromID], locked[req.ToID]

		if sender.Balance < req.Amount {
			return fmt.Errorf("sender: %w", domain.ErrInsufficientFunds)
		}

		debitRemarks, creditRemarks := transferRemarks(req.Remarks, sender, receiver)

		debit, err := s.apply(ctx, tx, sender, 0, req.Amount, debitRemarks)
		if err != nil {
			return fmt.Errorf("debit sender: %w", err)
		}
		credit, err := s.apply(ctx, tx, receiver, req.Amount, 0, creditRemarks)
		if err != nil {
			return fmt.Errorf("credit receiver: %w", err)
		}

		result = &TransferResult{
			SenderBalance:   sender.Balance,
			ReceiverBalance: receiver.Balance,
			Debit:           *debit,
			Credit:          *credit,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("executeTransfer: %w", err)
	}
	return result, nil
}

// lockInOrder takes row locks in a fixed id order so two opposing transfers
// cannot deadlock each other.
func (s *Service) lockInOrder(ctx context.Context, tx *sql.Tx, req TransferRequest) (map[uuid.UUID]*domain.Customer, error) {
	ids := []uuid.UUID{req.FromID, req.ToID}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})

	locked := make(map[uuid.UUID]*domain.Customer, len(ids))
	for _, id := range ids {
		role := "receiver"
		if id == req.FromID {
			role = "sender"
		}
		c, err := s.lock(ctx, tx, id, role)
		if err != nil {
			return nil, fmt.Errorf("lockInOrder: %w", err)
		}
		locked[id] = c
	}
	return locked, nil
}

// transferRemarks returns the sender-side and receiver-side remarks. Supplied
// remarks are used for both sides.
func transferRemarks(remarks string, sender, receiver *domain.Customer) (string, string) {
	if strings.TrimSpace(remarks) != "" {
		return remarks, remarks
	}
	return "Transfer to " + counterpartyLabel(receiver, sender),
		"Transfer from " + counterpartyLabel(sender, receiver)
}

// counterpartyLabel names other by display name, or by account id when the
// name is blank or would be ambiguous next to self.
func counterpartyLabel(other, self *domain.Customer) string {
	name := strings.TrimSpace(other.Name)
	if name == "" || strings.EqualFold(name, strings.TrimSpace(self.Name)) {
		return other.ID.String()
	}
	return name
}
