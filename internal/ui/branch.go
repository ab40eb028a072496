// Package ui holds the console's presentational pieces. Everything here is a
// pure function of its arguments; state lives in views and tui.
package ui

import "github.com/charmbracelet/lipgloss"

// APIErrorMessage is shown in place of content whose fetch failed.
const APIErrorMessage = "Could not fetch data due to API error"

// EmptyMessage is shown when a fetch succeeded without data.
const EmptyMessage = "No data"

// Kind is the branch a data-backed component renders.
type Kind int

const (
	KindContent Kind = iota
	KindError
	KindLoading
	KindEmpty
)

func (k Kind) String() string {
	switch k {
	case KindError:
		return "error"
	case KindLoading:
		return "loading"
	case KindEmpty:
		return "empty"
	default:
		return "content"
	}
}

// Choose picks the branch: an error wins over loading, loading over empty.
func Choose(hasError, loading, hasData bool) Kind {
	switch {
	case hasError:
		return KindError
	case loading:
		return KindLoading
	case !hasData:
		return KindEmpty
	default:
		return KindContent
	}
}

var (
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
)

// Branch renders the branch chosen for {error, loading, hasData}. spinner is
// the current spinner frame; content is only called for KindContent.
func Branch(k Kind, spinner string, content func() string) string {
	switch k {
	case KindError:
		return errorStyle.Render(APIErrorMessage)
	case KindLoading:
		return spinner + " Loading..."
	case KindEmpty:
		return mutedStyle.Render(EmptyMessage)
	default:
		return content()
	}
}

// ErrorPage is the full-screen error shown by primary views.
func ErrorPage(status int, message string) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")).Render("Error")
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		APIErrorMessage,
		mutedStyle.Render(statusLine(status, message)),
	)
}

func statusLine(status int, message string) string {
	if message == "" {
		return ""
	}
	if status == 0 {
		return message
	}
	return itoa(status) + " " + message
}
