package certificate

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDateRange is returned when a range cannot be parsed or its
	// start is after its end. No query is issued for such a range.
	ErrInvalidDateRange = errors.New("invalid date range")
	// ErrInvalidDate marks a date that could not be parsed. It wraps
	// ErrInvalidDateRange.
	ErrInvalidDate = fmt.Errorf("%w: unparseable date", ErrInvalidDateRange)
	// ErrNoConnection is returned when no database connection is available.
	ErrNoConnection = errors.New("database connection unavailable")
	// ErrMissingSetting marks a connection failure caused by configuration.
	ErrMissingSetting = errors.New("missing or invalid connection setting")
	// ErrQuery wraps failures while running the view query.
	ErrQuery = errors.New("certificate query failed")
)
