package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/randalmurphal/postflow/internal/model"
	"github.com/randalmurphal/postflow/internal/workflow"
)

const bannerWidth = 50

// printStart announces the run parameters before the workflow starts.
func printStart(w io.Writer, req workflow.Request) {
	fmt.Fprintln(w, "Starting content generation workflow for:")
	fmt.Fprintf(w, "  - Topic: %s\n", req.Topic)
	fmt.Fprintf(w, "  - Platform: %s\n", req.Platform)
	fmt.Fprintf(w, "  - Tone: %s\n", req.Tone)
}

// renderReport formats the finished state as the banner-delimited
// stdout report.
func renderReport(state model.State) string {
	banner := strings.Repeat("=", bannerWidth)

	var b strings.Builder
	b.WriteString(banner + "\n")
	fmt.Fprintf(&b, "GENERATED CONTENT FOR %s\n", strings.ToUpper(string(state.Platform)))
	b.WriteString(banner + "\n")

	if c := state.Content; c != nil {
		if c.Title != nil && *c.Title != "" {
			b.WriteString("\nTITLE: " + *c.Title + "\n")
		}
		b.WriteString("\nCONTENT:\n")
		b.WriteString(c.Content + "\n")
	}

	if img := state.Image; img != nil {
		b.WriteString("\nGENERATED IMAGE:\n")
		fmt.Fprintf(&b, "Prompt: %s\n", img.Prompt)
		fmt.Fprintf(&b, "Saved to: %s\n", img.Path)
	}

	b.WriteString(banner + "\n")
	return b.String()
}
