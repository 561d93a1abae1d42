package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophsocial/internal/common"
)

var errorKinds = []error{
	common.ErrorInvalidRequest,
	common.ErrorNotFound,
	common.ErrorUnauthorized,
	common.ErrorInternal,
}

// internalError returns err unchanged when it already carries an error kind
// and wraps it as common.ErrorInternal otherwise.
func internalError(op string, err error) error {
	for _, kind := range errorKinds {
		if errors.Is(err, kind) {
			return err
		}
	}
	return fmt.Errorf("%w: %s: %w", common.ErrorInternal, op, err)
}
