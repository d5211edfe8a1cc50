package health

import (
	"context"
	"errors"
)

// ErrSubjectStopped is reported once a subject's actor has exited.
var ErrSubjectStopped = errors.New("subject is not running")

// Runner is satisfied by *broadcast.Subject.
type Runner interface {
	Done() <-chan struct{}
}

// Subject returns a Check that fails once the subject's actor has exited.
func Subject(s Runner) Check {
	return func(context.Context) error {
		select {
		case <-s.Done():
			return ErrSubjectStopped
		default:
			return nil
		}
	}
}
