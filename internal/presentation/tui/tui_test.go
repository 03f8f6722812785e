package tui_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/canopy/internal/presentation/tui"
	"github.com/aretw0/canopy/pkg/bt"
	"github.com/aretw0/canopy/pkg/domain"
)

func TestStyler_PlainForNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	s := tui.NewStyler(&buf)
	assert.False(t, tui.IsTerminal(&buf))

	assert.Equal(t, "success", s.Status(domain.StatusSuccess))
	assert.Equal(t, "tick 2  a=running  b=failed", s.TickLine(2, map[string]domain.Status{
		"b": domain.StatusFailed,
		"a": domain.StatusRunning,
	}))
}

func TestStyler_Colors(t *testing.T) {
	s := tui.NewStylerWithProfile(termenv.TrueColor)
	out := s.Status(domain.StatusFailed)
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "\x1b[")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf, tui.NewStylerWithProfile(termenv.Ascii))
	assert.Contains(t, buf.String(), `\___\__,_|`)
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestDescribe(t *testing.T) {
	spec := &domain.TreeSpec{
		ID:          "patrol",
		Description: "Guard patrol.",
		Root:        "root",
		Nodes: []domain.NodeSpec{
			{ID: "root", Kind: "parallel", Children: []string{"walk"}, Config: map[string]any{"mode": "restart"}},
			{ID: "walk", Kind: "wait", Config: map[string]any{"ticks": 3, "result": "success"}},
		},
		Metadata: map[string]string{"owner": "ops"},
	}
	walk := bt.Action("walk", func(context.Context) bt.Status { return bt.Running }).Tag("wait", nil)
	tree := bt.MustCompile(bt.NewParallel("root", bt.ParallelRestart, walk).Tag("parallel", nil))

	md := tui.Describe(spec, tree)
	assert.Contains(t, md, "# patrol\n\nGuard patrol.")
	assert.Contains(t, md, "2 definitions, 2 compiled nodes, root `root`.")
	assert.Contains(t, md, "- **root** _(parallel, restart)_\n  - **walk** _(wait)_")
	assert.Contains(t, md, "| `walk` | wait |  | `result=success ticks=3` |")
	assert.Contains(t, md, "- owner: ops")
}

func TestNewRenderer(t *testing.T) {
	plain := tui.NewRenderer(false)
	out, err := plain("# title")
	require.NoError(t, err)
	assert.Equal(t, "# title", out)

	styled := tui.NewRenderer(true)
	out, err = styled("# title\n\nbody")
	require.NoError(t, err)
	assert.Contains(t, out, "body")
}
