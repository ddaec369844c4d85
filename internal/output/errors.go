package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/Dicklesworthstone/sfh/internal/tui/theme"
)

// CLIError represents a structured CLI error with remediation hints.
type CLIError struct {
	Message string // What failed
	Cause   string // Why it failed (optional)
	Hint    string // Fastest command/action to fix it (optional)
	Code    string // Error code for programmatic handling (optional)
}

// Error implements the error interface.
func (e *CLIError) Error() string {
	return e.Message
}

// NewCLIError creates a new CLI error with just a message.
func NewCLIError(msg string) *CLIError {
	return &CLIError{Message: msg}
}

// WithCause adds a cause to the error.
func (e *CLIError) WithCause(cause string) *CLIError {
	e.Cause = cause
	return e
}

// WithHint adds a remediation hint to the error.
func (e *CLIError) WithHint(hint string) *CLIError {
	e.Hint = hint
	return e
}

// WithCode adds an error code to the error.
func (e *CLIError) WithCode(code string) *CLIError {
	e.Code = code
	return e
}

// FormatCLIError renders e for a terminal. Colors are used only when
// useColor is set and NO_COLOR handling allows it.
func FormatCLIError(e *CLIError, useColor bool) string {
	label := func(s string) string { return s }
	cause, hint, code := label, label, label
	if useColor && !theme.NoColorEnabled() {
		t := theme.Current()
		render := func(st lipgloss.Style) func(string) string {
			return func(s string) string { return st.Render(s) }
		}
		label = render(lipgloss.NewStyle().Foreground(t.Error).Bold(true))
		cause = render(lipgloss.NewStyle().Foreground(t.Subtext))
		hint = render(lipgloss.NewStyle().Foreground(t.Info))
		code = render(lipgloss.NewStyle().Foreground(t.Overlay))
	}

	var sb strings.Builder
	sb.WriteString(label("Error: "))
	sb.WriteString(e.Message)
	if e.Code != "" {
		sb.WriteString(" ")
		sb.WriteString(code("[" + e.Code + "]"))
	}
	sb.WriteString("\n")

	if e.Cause != "" {
		sb.WriteString(cause("  Cause: "))
		sb.WriteString(e.Cause)
		sb.WriteString("\n")
	}
	if e.Hint != "" {
		sb.WriteString(hint("  Hint: "))
		sb.WriteString(e.Hint)
		sb.WriteString("\n")
	}
	return sb.String()
}

// PrintError writes err to stderr (text) or as an ErrorResponse to w (JSON).
// CLIErrors keep their code and hint in both forms.
func PrintError(w io.Writer, err error, jsonMode bool) error {
	cliErr, ok := err.(*CLIError)
	if !ok {
		cliErr = NewCLIError(err.Error())
	}

	if jsonMode {
		return WriteJSON(w, ErrorResponse{
			Error:   cliErr.Message,
			Code:    cliErr.Code,
			Details: cliErr.Cause,
			Hint:    cliErr.Hint,
		}, true)
	}

	useColor := term.IsTerminal(int(os.Stderr.Fd()))
	_, werr := fmt.Fprint(os.Stderr, FormatCLIError(cliErr, useColor))
	return werr
}

// Common error hints for frequent scenarios
var (
	HintConfigNotFound = "Run 'sfh config init' to create a default configuration"
	HintConfigInvalid  = "Check config syntax with 'sfh config show' or edit ~/.config/sfh/config.toml"
	HintNoAccounts     = "Add [[accounts]] entries to the config, or run 'sfh dashboard --simulate'"
	HintStateLocked    = "Another sfh instance is crawling this server; stop it or use a different crawl.state_dir"
)

// ConfigInvalidError wraps a config load failure with a hint.
func ConfigInvalidError(path string, err error) *CLIError {
	return NewCLIError(fmt.Sprintf("invalid config %s", path)).
		WithCause(err.Error()).
		WithCode("CONFIG_INVALID").
		WithHint(HintConfigInvalid)
}

// ConfigNotFoundError is returned when an explicit --config path is missing.
func ConfigNotFoundError(path string) *CLIError {
	return NewCLIError(fmt.Sprintf("config file not found: %s", path)).
		WithCode("CONFIG_NOT_FOUND").
		WithHint(HintConfigNotFound)
}

// NoAccountsError is returned when there is nothing to show.
func NoAccountsError() *CLIError {
	return NewCLIError("no accounts configured").
		WithCode("NO_ACCOUNTS").
		WithHint(HintNoAccounts)
}
