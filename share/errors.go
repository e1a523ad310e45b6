package share

import (
	"context"
	"errors"
)

func IsContextClosedError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
