// Package ui holds the interactive terminal surface: the banner, the styled
// prompts, and line input with history.
package ui

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"
)

var (
	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)
	ruleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("37"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	modelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true)
	answerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	// WarnStyle and ErrorStyle are used by callers for status lines.
	WarnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("178"))
	ErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true)
)

const rule = "----------------------------------------"

var commandHelp = [][2]string{
	{"/q", "quit"},
	{"/c", "clear the current conversation"},
	{"/s", "save the conversation"},
	{"/r", "recall a saved conversation"},
	{"/h", "export the conversation to HTML"},
}

// Banner renders the startup banner with the active model and command help.
func Banner(modelID string) string {
	var sb strings.Builder
	sb.WriteString(bannerStyle.Render("bedrust") + "\n")
	sb.WriteString(ruleStyle.Render(rule) + "\n")
	sb.WriteString("model: " + modelStyle.Render(modelID) + "\n")
	sb.WriteString(helpStyle.Render("chat commands:") + "\n")
	for _, c := range commandHelp {
		sb.WriteString(helpStyle.Render(fmt.Sprintf("  %s\t%s", c[0], c[1])) + "\n")
	}
	sb.WriteString(ruleStyle.Render(rule))
	return sb.String()
}

// Answer styles a full model reply for synchronous (non-streamed) output.
func Answer(s string) string { return answerStyle.Render(s) }

// Console is line input with persistent history on top of liner.
type Console struct {
	line        *liner.State
	historyFile string
	out         io.Writer
}

// NewConsole opens the terminal for input. historyFile may be empty to skip
// history persistence.
func NewConsole(historyFile string) *Console {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	c := &Console{line: line, historyFile: historyFile, out: os.Stdout}
	if historyFile != "" {
		if f, err := os.Open(historyFile); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}
	return c
}

// ReadLine prompts for one line and records non-empty input in the history.
// Ctrl+C and Ctrl+D surface as errors the caller treats as quit.
func (c *Console) ReadLine(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// Choose prints the numbered options and reads a selection, returning its
// index.
func (c *Console) Choose(prompt string, options []string) (int, error) {
	for i, opt := range options {
		fmt.Fprintf(c.out, "%3d) %s\n", i+1, opt)
	}
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 1 || n > len(options) {
		return 0, fmt.Errorf("pick a number between 1 and %d", len(options))
	}
	return n - 1, nil
}

// Close persists the history and restores the terminal.
func (c *Console) Close() {
	if c.historyFile != "" {
		if f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
			c.line.WriteHistory(f)
			f.Close()
		}
	}
	c.line.Close()
}

// Aborted reports whether the input error means the user asked to leave
// rather than something going wrong.
func Aborted(err error) bool {
	return err == liner.ErrPromptAborted || err == io.EOF
}
