package core

import (
	"errors"
	"fmt"
)

// Stage identifies one step of the enrichment pipeline for failure
// reporting. Both address resolutions report as the geocode stage.
type Stage string

const (
	StageGeocode Stage = "geocode"
	StageRoute   Stage = "route"
	StageWeather Stage = "weather"
)

// StageError reports the failure of a single enrichment stage. Stage
// failures degrade gracefully: the corresponding piece of enrichment is
// simply omitted.
type StageError struct {
	Stage  Stage
	Reason string
	Err    error
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Reason)
}

func (e *StageError) Unwrap() error { return e.Err }

// PersistenceError reports a storage I/O failure. The attempted
// mutation is not applied and the operation is not retried.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsValidation reports whether err stems from bad or missing user
// input, as opposed to a storage or external-service failure.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrEmptyName, ErrEmptyOrigin, ErrEmptyDestination,
		ErrEmptyNotes, ErrEndBeforeStart, ErrInvalidAmount,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsPersistence reports whether err is a storage failure.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
