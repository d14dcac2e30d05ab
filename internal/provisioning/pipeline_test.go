package provisioning

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// phaseFuncImpl creates a Phase from a function for testing.
type phaseFuncImpl struct {
	name string
	fn   func(*Context) error
}

func phaseFunc(name string, fn func(*Context) error) Phase {
	return &phaseFuncImpl{name: name, fn: fn}
}

func (p *phaseFuncImpl) Name() string                 { return p.name }
func (p *phaseFuncImpl) Provision(ctx *Context) error { return p.fn(ctx) }

func testContext() *Context {
	return &Context{
		Context:  context.Background(),
		State:    NewState(),
		Observer: NewMockObserver(),
	}
}

func TestRunPhases_Success(t *testing.T) {
	t.Parallel()
	executed := make([]string, 0)

	phases := []Phase{
		phaseFunc("packages", func(_ *Context) error { executed = append(executed, "packages"); return nil }),
		phaseFunc("firmware", func(_ *Context) error { executed = append(executed, "firmware"); return nil }),
		phaseFunc("artifacts", func(_ *Context) error { executed = append(executed, "artifacts"); return nil }),
		phaseFunc("define", func(_ *Context) error { executed = append(executed, "define"); return nil }),
	}

	err := RunPhases(testContext(), phases)

	require.NoError(t, err)
	assert.Equal(t, []string{"packages", "firmware", "artifacts", "define"}, executed)
}

func TestRunPhases_StopsOnError(t *testing.T) {
	t.Parallel()
	executed := make([]string, 0)

	phases := []Phase{
		phaseFunc("packages", func(_ *Context) error { executed = append(executed, "packages"); return nil }),
		phaseFunc("firmware", func(_ *Context) error { return fmt.Errorf("descriptor directory missing") }),
		phaseFunc("artifacts", func(_ *Context) error { executed = append(executed, "artifacts"); return nil }),
	}

	err := RunPhases(testContext(), phases)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "firmware phase failed")
	assert.Contains(t, err.Error(), "descriptor directory missing")
	// artifacts should NOT have executed
	assert.Equal(t, []string{"packages"}, executed)
}

func TestRunPhases_Empty(t *testing.T) {
	t.Parallel()
	err := RunPhases(testContext(), nil)
	require.NoError(t, err)
}

func TestRunPhases_PassesSharedContext(t *testing.T) {
	t.Parallel()
	ctx := testContext()

	phases := []Phase{
		phaseFunc("first", func(c *Context) error {
			c.State.DefinitionPath = "vm.xml"
			return nil
		}),
		phaseFunc("second", func(c *Context) error {
			assert.Equal(t, "vm.xml", c.State.DefinitionPath)
			return nil
		}),
	}

	require.NoError(t, RunPhases(ctx, phases))
}
