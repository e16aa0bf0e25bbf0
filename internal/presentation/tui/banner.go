package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the agave banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"    __ _  __ _  __ ___   _____ ", "#fbbf24"},
		{"   / _` |/ _` |/ _` \\ \\ / / _ \\", "#fb923c"},
		{"  | (_| | (_| | (_| |\\ V /  __/", "#f97316"},
		{"   \\__,_|\\__, |\\__,_| \\_/ \\___|", "#ea580c"},
		{"         |___/  sunset", "#c2410c"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
