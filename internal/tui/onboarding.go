package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Onboarding is the first-run walkthrough, shown once and then recorded in
// preferences.
type Onboarding struct {
	Step int
}

type onboardingStep struct {
	title string
	body  string
}

var onboardingSteps = []onboardingStep{
	{
		title: "Welcome to zenith",
		body:  "Your browser tabs, live in the terminal.\nInstall the companion extension and it connects automatically.",
	},
	{
		title: "Navigate",
		body:  "↑↓ move · enter focuses the tab in the browser ·\n/ filters · tab opens the URL bar.",
	},
	{
		title: "Organize",
		body:  "Drag tabs with the mouse to reorder or regroup.\nRight-click any row for tab and group actions.",
	},
}

// Done reports whether the walkthrough is past its last step.
func (o Onboarding) Done() bool { return o.Step >= len(onboardingSteps) }

// Advance moves to the next step.
func (o *Onboarding) Advance() { o.Step++ }

// Skip jumps past the walkthrough entirely.
func (o *Onboarding) Skip() { o.Step = len(onboardingSteps) }

func (o Onboarding) View() string {
	if o.Done() {
		return ""
	}
	step := onboardingSteps[o.Step]

	titleStyle := lipgloss.NewStyle().Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2)

	var b strings.Builder
	b.WriteString(titleStyle.Render(step.title) + "\n\n")
	b.WriteString(step.body + "\n\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("(%d/%d) enter next · esc skip", o.Step+1, len(onboardingSteps))))

	return boxStyle.Render(b.String())
}
