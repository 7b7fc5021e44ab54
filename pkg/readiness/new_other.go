//go:build !linux

package readiness

import (
	"fmt"
	"runtime"

	"github.com/tupyy/expsum/internal/models"
)

func New(mechanism models.Mechanism, opts ...Option) (Multiplexer, error) {
	return nil, fmt.Errorf("%s multiplexer is not available on %s", mechanism, runtime.GOOS)
}
