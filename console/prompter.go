package console

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

// Prompter reads one line of input. LinePrompter is the terminal implementation.
type Prompter interface {
	Prompt(prompt string) (string, error)
	PasswordPrompt(prompt string) (string, error)
}

// LinePrompter provides line editing, history and tab completion of command names.
type LinePrompter struct {
	line        *liner.State
	historyFile string
}

var _ Prompter = (*LinePrompter)(nil)

// NewLinePrompter takes over the terminal until Close. An empty historyFile
// disables persisted history.
func NewLinePrompter(historyFile string) *LinePrompter {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	line.SetCompleter(completeCommand)

	p := &LinePrompter{line: line, historyFile: historyFile}
	if historyFile != "" {
		if f, err := os.Open(historyFile); err == nil {
			_, _ = line.ReadHistory(f)
			_ = f.Close()
		}
	}
	return p
}

func (p *LinePrompter) Prompt(prompt string) (string, error) {
	input, err := p.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		p.line.AppendHistory(input)
	}
	return input, nil
}

// PasswordPrompt reads without echo. Passwords never enter history.
func (p *LinePrompter) PasswordPrompt(prompt string) (string, error) {
	return p.line.PasswordPrompt(prompt)
}

// Close writes history (0600) and restores the terminal.
func (p *LinePrompter) Close() error {
	if p.historyFile != "" {
		if err := os.MkdirAll(filepath.Dir(p.historyFile), 0o700); err == nil {
			if f, err := os.OpenFile(p.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
				_, _ = p.line.WriteHistory(f)
				_ = f.Close()
			}
		}
	}
	return p.line.Close()
}

func completeCommand(line string) []string {
	var matches []string
	for _, c := range commands {
		if strings.HasPrefix(c.name, strings.ToLower(line)) {
			matches = append(matches, c.name)
		}
	}
	return matches
}
