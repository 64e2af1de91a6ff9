package cli

import (
	"errors"
	"fmt"
)

// Exit codes for scripts driving reorder/transfer.
const (
	exitFailure  = 1
	exitUsage    = 2
	exitNotFound = 3
)

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

// usageError is a bad argument the server would reject anyway.
type usageError struct {
	msg string
}

func (e usageError) Error() string { return e.msg }

func errUsage(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	var (
		usage    usageError
		notFound notFoundError
	)
	switch {
	case err == nil:
		return 0
	case errors.As(err, &usage):
		return exitUsage
	case errors.As(err, &notFound):
		return exitNotFound
	default:
		return exitFailure
	}
}
