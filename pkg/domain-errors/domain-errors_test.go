package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestMessage() {
	s.Equal("scheme not found", New(CodeNotFound, "scheme not found").Error())
	s.Equal("not_found", (&Error{Code: CodeNotFound}).Error())
	s.Equal("limit must be at most 500", Newf(CodeValidation, "limit must be at most %d", 500).Error())
}

func (s *DomainErrorsSuite) TestIsMatchesByCode() {
	s.Run("same code different message", func() {
		s.True(errors.Is(New(CodeNotFound, "scheme not found"), New(CodeNotFound, "")))
	})

	s.Run("different codes", func() {
		s.False(errors.Is(New(CodeInvalidTransition, "application already finalized"), New(CodeForbidden, "")))
	})

	s.Run("plain errors never match", func() {
		s.False(errors.Is(New(CodeNotFound, ""), errors.New("not_found")))
	})

	s.Run("through a wrapped chain", func() {
		inner := New(CodeNotFound, "application not found")
		outer := fmt.Errorf("load application: %w", inner)
		s.True(errors.Is(outer, New(CodeNotFound, "")))
	})
}

func (s *DomainErrorsSuite) TestWrap() {
	s.Run("infrastructure errors take the given code", func() {
		cause := errors.New("connection reset")
		err := Wrap(cause, CodeInternal, "failed to list schemes")

		s.Equal(CodeInternal, CodeOf(err))
		s.Equal("failed to list schemes", err.Error())
		s.ErrorIs(err, cause)
	})

	s.Run("domain codes survive", func() {
		err := Wrap(New(CodeConcurrencyConflict, "application status changed"), CodeInternal, "review failed")
		s.True(HasCode(err, CodeConcurrencyConflict))
		s.Equal("review failed", err.Error())
	})
}

func (s *DomainErrorsSuite) TestCodeOf() {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, ""},
		{"plain", errors.New("boom"), ""},
		{"direct", New(CodeForbidden, "analysts cannot approve"), CodeForbidden},
		{"fmt wrapped", fmt.Errorf("transition: %w", New(CodeInvalidTransition, "x")), CodeInvalidTransition},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.Equal(tt.want, CodeOf(tt.err))
			s.Equal(tt.want != "", HasCode(tt.err, tt.want))
		})
	}
}
