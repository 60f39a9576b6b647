package rules

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument rejects a request that can never succeed as given.
var ErrInvalidArgument = errors.New("invalid argument")

// InsufficientFundsError rejects a spend larger than the balance.
type InsufficientFundsError struct {
	Required int64
	Balance  int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: need %d, have %d", e.Required, e.Balance)
}

// Shortfall is how much more the user would need.
func (e *InsufficientFundsError) Shortfall() int64 {
	return e.Required - e.Balance
}
