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

package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidModule is returned when a module source yields no usable manifest.
	// Such a source is skipped and never retried.
	ErrInvalidModule = errors.New("invalid module")

	// ErrDuplicateName is returned when a module claims a name already taken by a
	// loaded or deferred module. The first module to claim a name wins.
	ErrDuplicateName = errors.New("duplicate module name")

	// ErrActivation is returned when a module activation hook failed.
	ErrActivation = errors.New("module activation failed")

	// ErrRegistration is returned when a component with the same name is already registered.
	ErrRegistration = errors.New("component is already registered")

	// ErrUnknownComponent is returned when an upgrade targets a component that is not registered.
	ErrUnknownComponent = errors.New("component is not registered")

	// ErrInvalidManifest is returned when a manifest fails validation.
	ErrInvalidManifest = errors.New("invalid manifest")

	// ErrInvalidDefinition is returned when a component definition fails validation.
	ErrInvalidDefinition = errors.New("invalid component definition")

	// ErrUnknownAttribute is returned when setting an attribute the component does not define.
	ErrUnknownAttribute = errors.New("unknown attribute")

	// ErrEntityNotFound is returned when an entity cannot be found in the world.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrKernelNotStarted is returned when the kernel is used before Start.
	ErrKernelNotStarted = errors.New("kernel is not started")

	// ErrKernelAlreadyStarted is returned when Start is called twice.
	ErrKernelAlreadyStarted = errors.New("kernel has already started")

	// ErrStoreClosed is returned when the persistence store is used after Stop.
	ErrStoreClosed = errors.New("persistence store is closed")
)

// InvalidModuleError reports a module source that yields no usable manifest.
type InvalidModuleError struct {
	Source string
	Err    error
}

var _ error = (*InvalidModuleError)(nil)

// NewInvalidModuleError creates an InvalidModuleError
func NewInvalidModuleError(source string, err error) *InvalidModuleError {
	return &InvalidModuleError{Source: source, Err: err}
}

func (e *InvalidModuleError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrInvalidModule, e.Source)
	}
	return fmt.Sprintf("%s: %s: %v", ErrInvalidModule, e.Source, e.Err)
}

// Is makes errors.Is(err, ErrInvalidModule) succeed
func (e *InvalidModuleError) Is(target error) bool {
	return target == ErrInvalidModule
}

// Unwrap returns the underlying cause
func (e *InvalidModuleError) Unwrap() error {
	return e.Err
}

// DuplicateNameError reports a module rejected because its name is taken.
type DuplicateNameError struct {
	Name           string
	Source         string
	ExistingSource string
}

var _ error = (*DuplicateNameError)(nil)

// NewDuplicateNameError creates a DuplicateNameError
func NewDuplicateNameError(name, source, existing string) *DuplicateNameError {
	return &DuplicateNameError{Name: name, Source: source, ExistingSource: existing}
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("%s: %q from %s was already loaded from %s", ErrDuplicateName, e.Name, e.Source, e.ExistingSource)
}

// Is makes errors.Is(err, ErrDuplicateName) succeed
func (e *DuplicateNameError) Is(target error) bool {
	return target == ErrDuplicateName
}

// ActivationError reports a failed activation hook.
type ActivationError struct {
	Name string
	Err  error
}

var _ error = (*ActivationError)(nil)

// NewActivationError creates an ActivationError
func NewActivationError(name string, err error) *ActivationError {
	return &ActivationError{Name: name, Err: err}
}

func (e *ActivationError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrActivation, e.Name, e.Err)
}

// Is makes errors.Is(err, ErrActivation) succeed
func (e *ActivationError) Is(target error) bool {
	return target == ErrActivation
}

// Unwrap returns the error returned by the activation hook
func (e *ActivationError) Unwrap() error {
	return e.Err
}

// RegistrationError reports a rejected component registration.
type RegistrationError struct {
	Component string
}

var _ error = (*RegistrationError)(nil)

// NewRegistrationError creates a RegistrationError
func NewRegistrationError(component string) *RegistrationError {
	return &RegistrationError{Component: component}
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrRegistration, e.Component)
}

// Is makes errors.Is(err, ErrRegistration) succeed
func (e *RegistrationError) Is(target error) bool {
	return target == ErrRegistration
}

// UnknownComponentError reports an upgrade against an unregistered component.
type UnknownComponentError struct {
	Component string
}

var _ error = (*UnknownComponentError)(nil)

// NewUnknownComponentError creates an UnknownComponentError
func NewUnknownComponentError(component string) *UnknownComponentError {
	return &UnknownComponentError{Component: component}
}

func (e *UnknownComponentError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnknownComponent, e.Component)
}

// Is makes errors.Is(err, ErrUnknownComponent) succeed
func (e *UnknownComponentError) Is(target error) bool {
	return target == ErrUnknownComponent
}
