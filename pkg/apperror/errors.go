package apperror

import "errors"

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidConfig   = errors.New("invalid config")
	ErrNotFound        = errors.New("not found")

	// ErrExporterUnavailable is returned by span exporters whose backend is
	// unreachable or whose circuit is open.
	ErrExporterUnavailable = errors.New("exporter unavailable")
)
