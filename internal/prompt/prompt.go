// Package prompt asks the user things.
package prompt

import (
	"context"
	"errors"
)

// ErrCancelled is returned when the user backs out of a prompt (ctrl+c).
var ErrCancelled = errors.New("prompt cancelled")

type Prompter interface {
	Choice(ctx context.Context, message string, choices []string) (string, error)
	Text(ctx context.Context, message string) (string, error)
	// Secret reads text without echoing it.
	Secret(ctx context.Context, message string) (string, error)
}
