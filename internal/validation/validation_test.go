// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/multierr"
)

type validationTestSuite struct {
	suite.Suite
}

func TestValidation(t *testing.T) {
	suite.Run(t, new(validationTestSuite))
}

func (s *validationTestSuite) TestNewChain() {
	chain := New()
	s.Assert().NotNil(chain)
	s.Assert().False(chain.failFast)
	s.Assert().True(New(FailFast()).failFast)
}

func (s *validationTestSuite) TestValidate() {
	s.Run("with no violation", func() {
		err := New().
			AddAssertion(true, "never").
			AddValidator(NewNameValidator("name", "Auth")).
			Validate()
		s.Assert().NoError(err)
	})
	s.Run("with all errors", func() {
		err := New().
			AddAssertion(false, "first").
			AddValidator(NewNameValidator("name", "")).
			Validate()
		s.Require().Error(err)
		s.Assert().Len(multierr.Errors(err), 2)
		s.Assert().Contains(err.Error(), "first")
		s.Assert().Contains(err.Error(), "the [name] is required")
	})
	s.Run("with fail fast", func() {
		err := New(FailFast()).
			AddAssertion(false, "first").
			AddAssertion(false, "second").
			Validate()
		s.Assert().EqualError(err, "first")
	})
}

func (s *validationTestSuite) TestNameValidator() {
	s.Assert().NoError(NewNameValidator("name", "ClientManager").Validate())
	s.Assert().NoError(NewNameValidator("name", "kiara.protocol-v2_1").Validate())
	s.Assert().Error(NewNameValidator("name", "-leading").Validate())
	s.Assert().Error(NewNameValidator("name", "with space").Validate())
	s.Assert().Error(NewNameValidator("name", strings.Repeat("a", 256)).Validate())
}
