package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/bank-backoffice/internal/domain"
	"github.com/josh-kwaku/bank-backoffice/internal/logging"
	"github.com/josh-kwaku/bank-backoffice/internal/service/ledger"
)

type ledgerService interface {
	Deposit(ctx context.Context, customerID uuid.UUID, amount int64, remarks string) (int64, error)
	Withdraw(ctx context.Context, customerID uuid.UUID, amount int64, remarks string) (int64, error)
	Transfer(ctx context.Context, req ledger.TransferRequest) (*ledger.TransferResult, error)
	History(ctx context.Context, q ledger.HistoryQuery) (*ledger.HistoryPage, error)
	Summary(ctx context.Context, customerID string) (*ledger.Summary, error)
	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
}

type TransactionHandler struct {
	ledger ledgerService
}

func NewTransactionHandler(ledger ledgerService) *TransactionHandler {
	return &TransactionHandler{ledger: ledger}
}

type movementRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	Remarks string          `json:"remarks" validate:"max=255"`
}

type transferRequest struct {
	FromID  string          `json:"from_id" validate:"required"`
	ToID    string          `json:"to_id" validate:"required"`
	Amount  decimal.Decimal `json:"amount"`
	Remarks string          `json:"remarks" validate:"max=255"`
}

type balanceResponse struct {
	CustomerID uuid.UUID `json:"customer_id"`
	Amount     string    `json:"amount"`
	Balance    string    `json:"balance"`
}

type transferResponse struct {
	FromID              uuid.UUID `json:"from_id"`
	ToID                uuid.UUID `json:"to_id"`
	Amount              string    `json:"amount"`
	SenderBalance       string    `json:"sender_balance"`
	ReceiverBalance     string    `json:"receiver_balance"`
	DebitTransactionID  uuid.UUID `json:"debit_transaction_id"`
	CreditTransactionID uuid.UUID `json:"credit_transaction_id"`
}

type historyResponse struct {
	Transactions []transactionDTO `json:"transactions"`
	Page         int              `json:"page"`
	Limit        int              `json:"limit"`
	Total        int              `json:"total"`
	TotalPages   int              `json:"total_pages"`
}

type summaryResponse struct {
	TotalCredit    string `json:"total_credit"`
	TotalDebit     string `json:"total_debit"`
	CurrentBalance string `json:"current_balance"`
}

func (h *TransactionHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, "deposit", h.ledger.Deposit)
}

func (h *TransactionHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, "withdrawal", h.ledger.Withdraw)
}

type movement func(ctx context.Context, customerID uuid.UUID, amount int64, remarks string) (int64, error)

func (h *TransactionHandler) move(w http.ResponseWriter, r *http.Request, op string, apply movement) {
	customerID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req movementRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	amount, err := domain.ToMinor(req.Amount)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	balance, err := apply(r.Context(), customerID, amount, req.Remarks)
	if err != nil {
		logging.FromContext(r.Context()).Warn(op+" failed", "customer_id", customerID, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, balanceResponse{
		CustomerID: customerID,
		Amount:     money(amount),
		Balance:    money(balance),
	})
}

func (h *TransactionHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	fromID, err := domain.ParseID(req.FromID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	toID, err := domain.ParseID(req.ToID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	amount, err := domain.ToMinor(req.Amount)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	res, err := h.ledger.Transfer(r.Context(), ledger.TransferRequest{
		FromID:  fromID,
		ToID:    toID,
		Amount:  amount,
		Remarks: req.Remarks,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("transfer failed",
			"from_id", fromID,
			"to_id", toID,
			"error", err,
		)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, transferResponse{
		FromID:              fromID,
		ToID:                toID,
		Amount:              money(amount),
		SenderBalance:       money(res.SenderBalance),
		ReceiverBalance:     money(res.ReceiverBalance),
		DebitTransactionID:  res.Debit.ID,
		CreditTransactionID: res.Credit.ID,
	})
}

func (h *TransactionHandler) History(w http.ResponseWriter, r *http.Request) {
	var fields []FieldError
	page, errs := queryInt(r, "page")
	fields = append(fields, errs...)
	limit, errs := queryInt(r, "limit")
	fields = append(fields, errs...)
	dr, errs := queryDateRange(r)
	fields = append(fields, errs...)
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	res, err := h.ledger.History(r.Context(), ledger.HistoryQuery{
		CustomerID: r.PathValue("customerId"),
		Page:       page,
		PageSize:   limit,
		Range:      dr,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("history lookup failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]transactionDTO, len(res.Transactions))
	for i := range res.Transactions {
		dtos[i] = toTransactionDTO(&res.Transactions[i])
	}
	RespondSuccess(w, http.StatusOK, historyResponse{
		Transactions: dtos,
		Page:         res.Page,
		Limit:        res.PageSize,
		Total:        res.Total,
		TotalPages:   res.TotalPages,
	})
}

func (h *TransactionHandler) Summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.ledger.Summary(r.Context(), r.PathValue("customerId"))
	if err != nil {
		logging.FromContext(r.Context()).Warn("summary lookup failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, summaryResponse{
		TotalCredit:    money(sum.TotalCredit),
		TotalDebit:     money(sum.TotalDebit),
		CurrentBalance: money(sum.CurrentBalance),
	})
}

func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.ledger.GetTransaction(r.Context(), r.PathValue("id"))
	if err != nil {
		logging.FromContext(r.Context()).Warn("transaction lookup failed", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toTransactionDTO(t))
}
