package command

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrCommandNotFound  = errors.New("command not found")
	ErrNoPrivateMessage = errors.New("command cannot be used in private messages")
	ErrNotOwner         = errors.New("command is restricted to the bot owner")
)

type CooldownError struct {
	Cooldown   Cooldown
	RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("command on cooldown, retry after %s", e.RetryAfter)
}

type MissingPermissionsError struct {
	Missing []string
}

func (e *MissingPermissionsError) Error() string {
	return "missing permissions: " + strings.Join(e.Missing, ", ")
}

type MissingArgumentError struct {
	Param Param
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("%s is a required argument that is missing", e.Param.Name)
}

// CheckFailure is returned when a check rejects an invocation. Err says why.
type CheckFailure struct {
	Check string
	Err   error
}

func (e *CheckFailure) Error() string {
	return fmt.Sprintf("check %s failed: %v", e.Check, e.Err)
}

func (e *CheckFailure) Unwrap() error {
	return e.Err
}

// InvokeError wraps an error returned, or a panic raised, by a command.
type InvokeError struct {
	Command string
	Err     error
}

func (e *InvokeError) Error() string {
	return fmt.Sprintf("command %s raised an error: %v", e.Command, e.Err)
}

func (e *InvokeError) Unwrap() error {
	return e.Err
}
