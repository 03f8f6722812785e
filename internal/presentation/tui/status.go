package tui

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/muesli/termenv"

	"github.com/aretw0/canopy/pkg/domain"
)

// Styler colors tick output for one color profile.
type Styler struct {
	profile termenv.Profile
}

// NewStyler detects the color profile of w. Non-terminals get plain text.
func NewStyler(w io.Writer) Styler {
	if !IsTerminal(w) {
		return Styler{profile: termenv.Ascii}
	}
	return Styler{profile: termenv.NewOutput(w).EnvColorProfile()}
}

// NewStylerWithProfile is NewStyler with a fixed profile.
func NewStylerWithProfile(p termenv.Profile) Styler {
	return Styler{profile: p}
}

var statusColors = map[domain.Status]string{
	domain.StatusRunning: "#fbc02d",
	domain.StatusSuccess: "#43a047",
	domain.StatusFailed:  "#e53935",
	domain.StatusInvalid: "#9e9e9e",
}

// Status renders a status name in its color.
func (s Styler) Status(status domain.Status) string {
	out := s.profile.String(status.String())
	if c, ok := statusColors[status]; ok {
		out = out.Foreground(s.profile.Color(c))
	}
	if status.IsTerminal() {
		out = out.Bold()
	}
	return out.String()
}

// Faint dims secondary text.
func (s Styler) Faint(text string) string {
	return s.profile.String(text).Faint().String()
}

// TickLine formats one round of results: "tick 3  a=running  b=success".
func (s Styler) TickLine(round int, results map[string]domain.Status) string {
	ids := make([]string, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var b strings.Builder
	b.WriteString(s.Faint(fmt.Sprintf("tick %d", round)))
	for _, id := range ids {
		fmt.Fprintf(&b, "  %s=%s", id, s.Status(results[id]))
	}
	return b.String()
}
