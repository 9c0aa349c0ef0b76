// Package confirm asks the user before a generation is sent to the model.
package confirm

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"github.com/whaaaley/cynthia/internal/cynerr"
)

var (
	ErrNotInteractive = errors.New("confirmation needs a terminal, pass --yes to skip it")
	ErrDeclined       = errors.New("generation declined")
)

type Confirmer interface {
	Confirm(ctx context.Context, title, description string) (bool, error)
}

// Always answers every question with its own value.
type Always bool

func (a Always) Confirm(context.Context, string, string) (bool, error) {
	return bool(a), nil
}

// Terminal shows an interactive yes/no prompt on stdin.
type Terminal struct {
	In *os.File
}

func NewTerminal() *Terminal {
	return &Terminal{In: os.Stdin}
}

func (t *Terminal) Interactive() bool {
	in := t.In
	if in == nil {
		in = os.Stdin
	}
	return isatty.IsTerminal(in.Fd()) || isatty.IsCygwinTerminal(in.Fd())
}

func (t *Terminal) Confirm(ctx context.Context, title, description string) (bool, error) {
	if !t.Interactive() {
		return false, cynerr.Precondition(ErrNotInteractive)
	}

	ok := false
	field := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Generate").
		Negative("Cancel").
		Value(&ok)

	if err := huh.NewForm(huh.NewGroup(field)).RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, fmt.Errorf("confirmation prompt: %w", err)
	}
	return ok, nil
}

// Require returns ErrDeclined unless c confirms.
func Require(ctx context.Context, c Confirmer, title, description string) error {
	ok, err := c.Confirm(ctx, title, description)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDeclined
	}
	return nil
}
