package domain

import (
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	ID                 uuid.UUID
	Name               string
	DOB                time.Time
	Address            string
	MobileNo           string
	Email              string
	AccountType        string
	AccountNumber      string
	Balance            int64
	Version            int64
	MPINHash           string
	SecurityQuestion   string
	SecurityAnswerHash *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ProfileUpdate carries the non-balance fields an edit may touch. Nil fields are left as is.
type ProfileUpdate struct {
	Name        *string
	Email       *string
	MobileNo    *string
	Address     *string
	DOB         *time.Time
	AccountType *string
	MPINHash    *string
}

func (u ProfileUpdate) IsEmpty() bool {
	return u.Name == nil && u.Email == nil && u.MobileNo == nil && u.Address == nil &&
		u.DOB == nil && u.AccountType == nil && u.MPINHash == nil
}

// ParseID parses a customer or transaction identifier.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, ErrInvalidAccountID
	}
	return id, nil
}

type DailyCount struct {
	Date  string
	Count int
}
