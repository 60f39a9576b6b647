package economy

import (
	"errors"
	"fmt"

	"github.com/sdvdiscord/sideshow/internal/ledger"
	"github.com/sdvdiscord/sideshow/internal/rules"
)

var (
	ErrReviewClosed   = errors.New("review already resolved")
	ErrReviewNotFound = errors.New("review not found")
)

// ExternalError is a failed chat-platform side effect (role change, message send). The
// ledger is left untouched when one is returned.
type ExternalError struct {
	Op  string
	Err error
}

func (e *ExternalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ExternalError) Unwrap() error { return e.Err }

// Class names the error family for metrics and adapter replies.
func Class(err error) string {
	var (
		funds    *rules.InsufficientFundsError
		storage  *ledger.StorageError
		external *ExternalError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, rules.ErrInvalidArgument):
		return "invalid"
	case errors.As(err, &funds):
		return "funds"
	case errors.As(err, &storage):
		return "storage"
	case errors.As(err, &external):
		return "external"
	case errors.Is(err, ErrReviewClosed), errors.Is(err, ErrReviewNotFound):
		return "review"
	}
	return "other"
}
