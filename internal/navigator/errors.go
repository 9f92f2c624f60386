package navigator

import (
	"errors"
	"fmt"
)

var (
	ErrAuthentication = errors.New("authentication failed")
	ErrNoModules      = errors.New("no enrolled modules found")
	ErrNoModuleMatch  = errors.New("no module matches")
)

// AuthError is returned once every login attempt has been rejected.
type AuthError struct {
	Attempts int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("login rejected after %d attempt(s)", e.Attempts)
}

func (e *AuthError) Unwrap() error {
	return ErrAuthentication
}

// StepError names the step and page an automation failure happened on.
type StepError struct {
	Step     State
	URL      string
	Selector string
	Err      error
}

func (e *StepError) Error() string {
	msg := e.Step.String()
	if e.URL != "" {
		msg += " at " + e.URL
	}
	if e.Selector != "" {
		msg += fmt.Sprintf(" (selector %q)", e.Selector)
	}
	return msg + ": " + e.Err.Error()
}

func (e *StepError) Unwrap() error {
	return e.Err
}
