//go:build linux

package readiness

import (
	"github.com/tupyy/expsum/internal/models"
	srvErrors "github.com/tupyy/expsum/pkg/errors"
)

// New returns the multiplexer implementing mechanism.
func New(mechanism models.Mechanism, opts ...Option) (Multiplexer, error) {
	o := newOptions(opts...)

	switch mechanism {
	case models.MechanismEpoll:
		return NewEpoll()
	case models.MechanismSelect:
		return NewSelect(o.selectTimeout), nil
	case models.MechanismSequential, models.MechanismPoll:
		return nil, srvErrors.NewUnsupportedMechanismError(string(mechanism))
	default:
		return nil, srvErrors.NewConfigurationError("wait_mechanism", string(mechanism))
	}
}
