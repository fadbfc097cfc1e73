package services

import (
	"github.com/dmitrijs2005/minibank/internal/common"
	"github.com/dmitrijs2005/minibank/internal/money"
	"github.com/shopspring/decimal"
)

// InsufficientBalanceError rejects a transfer larger than the sender's
// current balance. It matches common.ErrInsufficientBalance.
type InsufficientBalanceError struct {
	Available decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return "Insufficient balance. Available: " + money.Format(e.Available)
}

func (e *InsufficientBalanceError) ErrorCode() common.Code { return common.CodeInsufficientBalance }

func (e *InsufficientBalanceError) Is(target error) bool {
	t, ok := target.(*common.Error)
	return ok && t.Code == common.CodeInsufficientBalance
}

// dbFault turns a repository failure into a sanitized DATABASE_ERROR.
func dbFault(err error) error {
	return common.WrapError(common.CodeDatabase, common.ErrDatabase.Message, err)
}
