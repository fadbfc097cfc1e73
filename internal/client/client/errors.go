package client

import (
	"errors"

	"github.com/dmitrijs2005/minibank/internal/bankapi"
	"github.com/dmitrijs2005/minibank/internal/common"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotLoggedIn  = errors.New("not logged in")
)

// rejected turns an unsuccessful result into a coded error.
func rejected(r bankapi.Result) error {
	if r.Success {
		return nil
	}
	code := common.Code(r.ErrorCode)
	if code == "" {
		code = common.CodeInternal
	}
	return common.NewError(code, r.Message)
}
