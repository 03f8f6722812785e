package tui

import (
	"fmt"
	"io"
)

// PrintBanner writes the Canopy banner to w in a green gradient.
func PrintBanner(w io.Writer, s Styler) {
	lines := []struct{ text, color string }{
		{`   ___                               `, "#a5d6a7"},
		{`  / __|__ _ _ _  ___ _ __ _  _       `, "#81c784"},
		{` | (__/ _' | ' \/ _ \ '_ \ || |      `, "#66bb6a"},
		{`  \___\__,_|_||_\___/ .__/\_, |      `, "#4caf50"},
		{`                    |_|   |__/       `, "#388e3c"},
	}
	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, s.profile.String(l.text).Foreground(s.profile.Color(l.color)).String())
	}
	fmt.Fprintln(w)
}
