package domain

import "errors"

var (
	// ErrInvalidLocation is returned for coordinates outside the WGS-84 range.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrUnknownHazard is returned for hazard names other than flood, drought or landslide.
	ErrUnknownHazard = errors.New("unknown hazard")

	// ErrInvalidWindow is returned when a requested date window is empty or inverted.
	ErrInvalidWindow = errors.New("invalid date window")
)
