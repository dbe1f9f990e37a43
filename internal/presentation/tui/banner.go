package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	"   __ _  __ _  ___  __ _",
	"  / _` |/ _` |/ _ \\/ _` |",
	" | (_| | (_| |  __/ (_| |",
	"  \\__, |\\__,_|\\___|\\__,_|",
	"  |___/",
}

var bannerColors = []string{"#34d399", "#2dd4bf", "#22d3ee", "#38bdf8", "#60a5fa"}

// Banner renders the ASCII art banner for the given color profile.
func Banner(p termenv.Profile) string {
	var sb strings.Builder
	sb.WriteString("\n")
	for i, line := range bannerLines {
		sb.WriteString(p.String(line).Foreground(p.Color(bannerColors[i])).String())
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	return sb.String()
}

// PrintBanner writes the banner using the terminal's detected color profile.
func PrintBanner(w io.Writer) {
	fmt.Fprint(w, Banner(termenv.ColorProfile()))
}
