package repl

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/peterh/liner"
)

// LineReader supplies one line of input per prompt. It returns io.EOF or
// liner.ErrPromptAborted when the user ends the session.
type LineReader interface {
	Prompt(prompt string) (string, error)
}

// historyAppender is implemented by readers that keep command history.
type historyAppender interface {
	AppendHistory(item string)
}

func isEndOfInput(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted)
}

// LinerReader is the terminal LineReader, with tab completion of command
// names and history persisted to a file.
type LinerReader struct {
	*liner.State
	historyPath string
}

// NewLinerReader takes over the terminal. Callers must Close it to restore
// the terminal and save history.
func NewLinerReader(historyPath string) *LinerReader {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	state.SetCompleter(complete)

	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			state.ReadHistory(f)
			f.Close()
		}
	}

	return &LinerReader{State: state, historyPath: historyPath}
}

// Close saves history and restores the terminal.
func (r *LinerReader) Close() error {
	defer r.State.Close()

	if r.historyPath == "" {
		return nil
	}
	var buf bytes.Buffer
	if _, err := r.WriteHistory(&buf); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.historyPath), 0o755); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}
	if err := atomic.WriteFile(r.historyPath, &buf); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// complete provides tab completion for commands.
func complete(line string) []string {
	var completions []string

	lower := strings.ToLower(line)
	for _, cmd := range commandNames {
		if strings.HasPrefix(cmd, lower) {
			completions = append(completions, cmd)
		}
	}

	return completions
}
