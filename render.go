package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/moyoez/deeddesk-go/types"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	payloadStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
)

// renderSelection lists what is about to be sent.
func renderSelection(w io.Writer, snap types.Snapshot) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%d image(s), %s", snap.FileCount, snap.TotalSizeText)))
	for _, p := range snap.Previews {
		fmt.Fprintf(w, "  %s %s\n", p.Name, mutedStyle.Render(p.SizeText))
	}
	fmt.Fprintln(w, mutedStyle.Render("→ "+snap.UploadURL))
}

func renderResult(w io.Writer, res types.SubmitResult, snap types.Snapshot) {
	switch res.State.Phase {
	case types.PhaseSucceeded:
		fmt.Fprintln(w, successStyle.Render("Upload succeeded"))
		if snap.PayloadText != "" {
			fmt.Fprintln(w, payloadStyle.Render(snap.PayloadText))
		}
	default:
		fmt.Fprintln(w, errorStyle.Render(res.Message))
	}
	if res.ReceiptID != "" {
		fmt.Fprintln(w, mutedStyle.Render("receipt "+res.ReceiptID))
	}
}

// renderRaw prints the payload exactly as displayed, or the error line. A newline is
// added only when the payload does not already end with one.
func renderRaw(w io.Writer, res types.SubmitResult) {
	if res.State.Payload == nil {
		fmt.Fprintln(w, res.Message)
		return
	}
	out := res.State.Payload.Display()
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	_, _ = io.WriteString(w, out)
}
