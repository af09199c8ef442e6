package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"vaxtrack/pkg/platform/sentinel"
)

type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestMessage() {
	s.Equal("subject not found", New(CodeNotFound, "subject not found").Error())
	s.Equal("not_found", (&Error{Code: CodeNotFound}).Error())
	s.Equal("dose 3 not found", Newf(CodeNotFound, "dose %d not found", 3).Error())
}

func (s *DomainErrorsSuite) TestInvalid() {
	err := Invalid("remind_at", "is required")

	var domainErr *Error
	s.Require().True(errors.As(err, &domainErr))
	s.Equal(CodeValidation, domainErr.Code)
	s.Equal("remind_at", domainErr.Field)
	s.Equal("remind_at is required", err.Error())
}

func (s *DomainErrorsSuite) TestIsMatchesByCode() {
	s.True(errors.Is(New(CodeNotFound, "subject not found"), &Error{Code: CodeNotFound}))
	s.False(errors.Is(New(CodeNotFound, "x"), &Error{Code: CodeConflict}))
	s.False(errors.Is(New(CodeNotFound, "x"), errors.New("not found")))

	nested := fmt.Errorf("load schedule: %w", New(CodeNotFound, "subject not found"))
	s.True(errors.Is(nested, &Error{Code: CodeNotFound}))
}

func (s *DomainErrorsSuite) TestWrap() {
	cases := []struct {
		name string
		err  error
		want Code
	}{
		{"keeps existing domain code", New(CodeNotFound, "subject not found"), CodeNotFound},
		{"maps not found sentinel", fmt.Errorf("find dose: %w", sentinel.ErrNotFound), CodeNotFound},
		{"maps conflict sentinel", sentinel.ErrConflict, CodeConflict},
		{"maps invalid state sentinel", sentinel.ErrInvalidState, CodeInvalidState},
		{"maps unavailable sentinel", sentinel.ErrUnavailable, CodeUnavailable},
		{"uses given code otherwise", errors.New("planner store timeout"), CodeInternal},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			wrapped := Wrap(tc.err, CodeInternal, "service error")
			s.Equal(tc.want, CodeOf(wrapped))
			s.Equal("service error", wrapped.Error())
			s.True(errors.Is(wrapped, tc.err))
		})
	}
}

func (s *DomainErrorsSuite) TestHasCode() {
	s.True(HasCode(New(CodeNotFound, "x"), CodeNotFound))
	s.False(HasCode(New(CodeNotFound, "x"), CodeInternal))
	s.False(HasCode(errors.New("plain"), CodeNotFound))
	s.False(HasCode(nil, CodeNotFound))
}

func (s *DomainErrorsSuite) TestCodeOf() {
	s.Equal(CodeValidation, CodeOf(Invalid("date_of_birth", "is required")))
	s.Equal(CodeInternal, CodeOf(errors.New("boom")))
}
