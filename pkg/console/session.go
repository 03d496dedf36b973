// Package console is the text front of heaplab: a Session feeds console
// lines to a VM and keeps the history of commands, results and errors.
package console

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/zurustar/heaplab/pkg/compiler"
	"github.com/zurustar/heaplab/pkg/logger"
	"github.com/zurustar/heaplab/pkg/vm"
)

// ErrQuit is returned by Execute for the :quit command.
var ErrQuit = errors.New("quit")

// HeapRowWidth is the number of bytes per :heap row.
const HeapRowWidth = 16

const helpText = `Enter one statement per line, for example:
  int x = 5
  int* p = malloc(sizeof(int))
  *p = 'a'
  (char)*p
Builtins: malloc(int size), clear(), setDisplayBase(int base), sizeof(type), reset()
Commands:
  :help      show this help
  :heap      show heap bytes and allocations
  :vars      list variables
  :builtins  list native functions
  :history   show the console history
  :quit      exit`

// Session runs console input against one VM.
type Session struct {
	vm      *vm.VM
	history *History
	log     *slog.Logger
}

// Option is a functional option for configuring the Session.
type Option func(*Session)

// WithLogger sets a custom logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Session) {
		s.log = log
	}
}

// NewSession creates a session on machine and points the VM's clear hook at
// the session history.
func NewSession(machine *vm.VM, opts ...Option) *Session {
	s := &Session{
		vm:      machine,
		history: NewHistory(),
		log:     logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	machine.SetClearHook(s.history.Clear)
	return s
}

// VM returns the session's VM.
func (s *Session) VM() *vm.VM { return s.vm }

// History returns the session history.
func (s *Session) History() *History { return s.history }

// Execute runs one line: a ":" command, or a statement. It returns the text
// to show; a statement producing void returns "". Errors are recorded in the
// history and returned.
func (s *Session) Execute(line string) (string, error) {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, ":") {
		return s.command(trimmed)
	}
	return s.statement(line)
}

func (s *Session) statement(line string) (string, error) {
	if strings.TrimSpace(line) == "" {
		return "", nil
	}
	s.history.Add(StyleCommand, line)

	stmt, err := compiler.Parse(line)
	if err != nil {
		s.history.Add(StyleError, err.Error())
		return "", err
	}
	if stmt == nil {
		return "", nil
	}

	result, err := s.vm.Evaluate(stmt)
	if err != nil {
		s.log.Debug("evaluation failed", "statement", stmt.String(), "error", err)
		s.history.Add(StyleError, err.Error())
		return "", err
	}

	text := FormatValue(result, s.vm.DisplayBase())
	if text != "" {
		s.history.Add(StyleInfo, text)
	}
	return text, nil
}

func (s *Session) command(line string) (string, error) {
	name := strings.Fields(line)[0]
	base := s.vm.DisplayBase()

	switch name {
	case ":help":
		return helpText, nil
	case ":heap":
		return FormatHeap(s.vm.Heap().Bytes(), base, HeapRowWidth) +
			FormatRegions(s.vm.Allocator().Regions(), base), nil
	case ":vars":
		return s.variables(base), nil
	case ":builtins":
		data, err := vm.MarshalRegistry()
		if err != nil {
			return "", fmt.Errorf("failed to marshal builtins: %w", err)
		}
		return strings.TrimRight(string(data), "\n"), nil
	case ":history":
		return strings.TrimRight(s.history.String(), "\n"), nil
	case ":quit", ":q":
		return "", ErrQuit
	}
	return "", fmt.Errorf("unknown command %s (type :help for usage)", name)
}

// variables lists user variables in name order. Native functions are left
// to :builtins.
func (s *Session) variables(base int) string {
	scope := s.vm.GlobalScope()
	var lines []string
	for _, name := range scope.Keys() {
		v, ok := scope.Get(name)
		if !ok {
			continue
		}
		if _, isFn := v.Function(); isFn {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s %s = %s", v.Type(), name, FormatValue(v, base)))
	}
	if len(lines) == 0 {
		return "no variables"
	}
	return strings.Join(lines, "\n")
}

// RunLines executes statements in order, writing each non-empty result to
// out. It stops at the first error, which names the source and line.
func (s *Session) RunLines(source string, lines []compiler.Line, out io.Writer) error {
	for _, line := range lines {
		text, err := s.Execute(line.Text)
		if err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}
			return fmt.Errorf("%s:%d: %w", source, line.Number, err)
		}
		if text != "" {
			fmt.Fprintln(out, text)
		}
	}
	return nil
}
