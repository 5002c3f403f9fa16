package main

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration is the root of every validation failure.
// Validation runs before any trial, so a batch either starts with a usable
// configuration or does not start at all.
var ErrInvalidConfiguration = errors.New("invalid configuration")

var (
	ErrNoAssets              = invalid("no assets")
	ErrNoVehicles            = invalid("no charitable vehicles")
	ErrNoFamily              = invalid("no family members")
	ErrNoTaxAssets           = invalid("no tax assets")
	ErrInvalidHorizon        = invalid("invalid horizon or run count")
	ErrNegativeValue         = invalid("negative value")
	ErrRateRange             = invalid("rate outside [0,1]")
	ErrCorrelationShape      = invalid("correlation matrix is not square")
	ErrCorrelationAsymmetric = invalid("correlation matrix is not symmetric")
	ErrCorrelationDiagonal   = invalid("correlation matrix diagonal is not 1")
	ErrCorrelationRange      = invalid("correlation outside [-1,1]")
	ErrCorrelationGroup      = invalid("correlation group out of range")
	ErrNotPositiveDefinite   = invalid("correlation matrix is not positive definite")
	ErrUnknownAssetClass     = invalid("unknown asset class")
	ErrUnknownJurisdiction   = invalid("unknown jurisdiction")
	ErrUnknownEntity         = invalid("unknown entity type")
	ErrUnknownOption         = invalid("unknown option")
)

// invalidConfigError carries a message while matching ErrInvalidConfiguration
type invalidConfigError struct {
	msg string
}

func (e *invalidConfigError) Error() string { return e.msg }

func (e *invalidConfigError) Is(target error) bool { return target == ErrInvalidConfiguration }

func invalid(msg string) error {
	return &invalidConfigError{msg: msg}
}

// configErrorf wraps a sentinel with the offending field
func configErrorf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), sentinel)
}
