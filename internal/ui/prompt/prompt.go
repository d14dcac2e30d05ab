// Package prompt provides terminal confirmation prompts.
package prompt

import (
	"context"

	"github.com/charmbracelet/huh"
)

// Confirm asks a y/n question on the terminal and returns the answer.
func Confirm(ctx context.Context, title, description string) (bool, error) {
	var answer bool

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Value(&answer),
		),
	).RunWithContext(ctx)
	if err != nil {
		return false, err
	}

	return answer, nil
}
