package provisioning

import (
	"context"

	"github.com/virtup/virtup/internal/config"
)

// Context wraps all dependencies and state needed for a provisioning phase.
type Context struct {
	context.Context
	Config   *config.Config
	State    *State
	Observer Observer

	// Interactive enables y/n confirmation prompts before side-effecting
	// steps. When false, prompts are skipped and their default action is
	// taken.
	Interactive bool
}

// NewContext creates a new provisioning context.
func NewContext(ctx context.Context, cfg *config.Config, interactive bool) *Context {
	return &Context{
		Context:     ctx,
		Config:      cfg,
		State:       NewState(),
		Observer:    NewConsoleObserver(),
		Interactive: interactive,
	}
}
