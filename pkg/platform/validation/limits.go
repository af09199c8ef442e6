package validation

import (
	"fmt"

	dErrors "vaxtrack/pkg/domain-errors"
)

// HTTP body limits
const (
	// MaxBodySize is the maximum allowed request body size (64 KB).
	MaxBodySize = 64 * 1024
)

// String element length limits
const (
	// MaxNotesLength is the maximum length of free-text notes on a dose or planner entry.
	MaxNotesLength = 2000

	// MaxCityLength is the maximum length of the city where a dose was given.
	MaxCityLength = 120

	// MaxImageURLLength is the maximum length of an image reference.
	MaxImageURLLength = 2048

	// MaxReminderTitleLength is the maximum length of a reminder title.
	MaxReminderTitleLength = 200

	// MaxReminderMessageLength is the maximum length of a reminder message.
	MaxReminderMessageLength = 1000
)

// CheckStringLength validates that a string does not exceed the maximum length.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}
