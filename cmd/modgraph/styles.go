// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Color palette shared by all CLI output, tuned for dark backgrounds.
const (
	// ColorPrimary is purple: titles and module names at the root of a tree.
	ColorPrimary = lipgloss.Color("#7C3AED")
	// ColorMuted is gray: subtitles and de-emphasized text.
	ColorMuted = lipgloss.Color("#6B7280")
	// ColorSuccess is green.
	ColorSuccess = lipgloss.Color("#10B981")
	// ColorError is red.
	ColorError = lipgloss.Color("#EF4444")
	// ColorWarning is amber.
	ColorWarning = lipgloss.Color("#F59E0B")
	// ColorHighlight is blue: module names, paths and providers.
	ColorHighlight = lipgloss.Color("#3B82F6")
	// ColorVerbose is light gray.
	ColorVerbose = lipgloss.Color("#9CA3AF")
)

var (
	// TitleStyle is for primary headers and section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for secondary headers and descriptions.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SuccessStyle is for success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle is for error messages.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// WarningStyle is for warnings and unavailable optional dependencies.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// CmdStyle is for module names, paths and commands.
	CmdStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)

	// VerboseStyle is for supplementary details.
	VerboseStyle = lipgloss.NewStyle().
			Foreground(ColorVerbose)

	// treeEnumeratorStyle styles the branches of dependency trees.
	treeEnumeratorStyle = lipgloss.NewStyle().
				Foreground(ColorMuted).
				MarginRight(1)
)
