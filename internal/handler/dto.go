package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/bank-backoffice/internal/domain"
)

// money renders minor units as a fixed two-place decimal string.
func money(minor int64) string {
	return domain.FromMinor(minor).StringFixed(2)
}

type customerDTO struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	DOB              string    `json:"dob"`
	Address          string    `json:"address"`
	MobileNo         string    `json:"mobile_no"`
	Email            string    `json:"email"`
	AccountType      string    `json:"account_type"`
	AccountNumber    string    `json:"account_number"`
	Balance          string    `json:"balance"`
	SecurityQuestion string    `json:"security_question,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func toCustomerDTO(c *domain.Customer) customerDTO {
	return customerDTO{
		ID:               c.ID,
		Name:             c.Name,
		DOB:              c.DOB.Format(dateLayout),
		Address:          c.Address,
		MobileNo:         c.MobileNo,
		Email:            c.Email,
		AccountType:      c.AccountType,
		AccountNumber:    c.AccountNumber,
		Balance:          money(c.Balance),
		SecurityQuestion: c.SecurityQuestion,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

func toCustomerDTOs(cs []domain.Customer) []customerDTO {
	out := make([]customerDTO, len(cs))
	for i := range cs {
		out[i] = toCustomerDTO(&cs[i])
	}
	return out
}

type transactionDTO struct {
	ID               uuid.UUID `json:"id"`
	CustomerID       uuid.UUID `json:"customer_id"`
	TransactionDate  time.Time `json:"transaction_date"`
	Remarks          string    `json:"remarks"`
	CreditAmount     string    `json:"credit_amount"`
	DebitAmount      string    `json:"debit_amount"`
	ResultingBalance string    `json:"resulting_balance"`
}

func toTransactionDTO(t *domain.Transaction) transactionDTO {
	return transactionDTO{
		ID:               t.ID,
		CustomerID:       t.CustomerID,
		TransactionDate:  t.TransactionDate,
		Remarks:          t.Remarks,
		CreditAmount:     money(t.CreditAmount),
		DebitAmount:      money(t.DebitAmount),
		ResultingBalance: money(t.ResultingBalance),
	}
}
