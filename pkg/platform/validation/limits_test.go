package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "vaxtrack/pkg/domain-errors"
)

type ValidationSuite struct {
	suite.Suite
}

func TestValidationSuite(t *testing.T) {
	suite.Run(t, new(ValidationSuite))
}

func (s *ValidationSuite) TestCheckStringLength() {
	s.Run("passes at max", func() {
		s.NoError(CheckStringLength("notes", strings.Repeat("a", MaxNotesLength), MaxNotesLength))
	})

	s.Run("fails at max+1", func() {
		err := CheckStringLength("notes", strings.Repeat("a", MaxNotesLength+1), MaxNotesLength)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(err.Error(), "notes exceeds max length of 2000")
	})
}

type sampleRequest struct {
	ReminderTime string `validate:"required,hhmm"`
	City         string `validate:"notblank"`
	Kind         string `validate:"oneof=user dependent"`
}

func (s *ValidationSuite) TestValidate() {
	s.Run("valid request", func() {
		s.NoError(Validate(sampleRequest{ReminderTime: "09:00", City: "Lagos", Kind: "user"}))
	})

	s.Run("missing required field names the snake_case field", func() {
		err := Validate(sampleRequest{City: "Lagos", Kind: "user"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(err.Error(), "reminder_time is required")
	})

	s.Run("rejects malformed time", func() {
		for _, tm := range []string{"9:00", "24:00", "12:60", "ab:cd"} {
			err := Validate(sampleRequest{ReminderTime: tm, City: "Lagos", Kind: "user"})
			s.Require().Error(err, tm)
			s.Contains(err.Error(), "HH:MM")
		}
	})

	s.Run("blank string fails notblank", func() {
		err := Validate(sampleRequest{ReminderTime: "09:00", City: "   ", Kind: "user"})
		s.Require().Error(err)
		s.Contains(err.Error(), "city must not be blank")
	})

	s.Run("oneof lists the allowed values", func() {
		err := Validate(sampleRequest{ReminderTime: "09:00", City: "x", Kind: "robot"})
		s.Require().Error(err)
		s.Contains(err.Error(), "kind must be one of [user dependent]")
	})
}
