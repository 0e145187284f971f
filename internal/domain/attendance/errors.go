package attendance

import "errors"

var (
	ErrInvalidDateRange = errors.New("end date must not be before start date")
)
