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
	"fmt"
	"regexp"
)

const maxNameLength = 255

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.\-]*$`)

type nameValidator struct {
	field string
	value string
}

// NewNameValidator checks that value is a usable module or component name:
// non-empty, at most 255 characters, starting with an alphanumeric character
// followed by alphanumerics, '.', '-' or '_'.
func NewNameValidator(field, value string) Validator {
	return nameValidator{field: field, value: value}
}

func (v nameValidator) Validate() error {
	switch {
	case v.value == "":
		return fmt.Errorf("the [%s] is required", v.field)
	case len(v.value) > maxNameLength:
		return fmt.Errorf("the [%s] exceeds %d characters", v.field, maxNameLength)
	case !namePattern.MatchString(v.value):
		return fmt.Errorf("the [%s] %q contains invalid characters", v.field, v.value)
	}
	return nil
}
