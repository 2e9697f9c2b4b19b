package catalog

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/reoring/goshape/internal/logging"
)

// Prompt is printed before every shell input line.
const Prompt = "(cli)# "

// Shell is an interactive help browser over a command tree. A line ending in
// "?" lists what may follow the matched keywords; "??" prints long help.
type Shell struct {
	Root *RootNode
	In   io.Reader
	Out  io.Writer
	Log  *slog.Logger
}

// Run prints the welcome text and serves lines until the input ends or ctx
// is cancelled.
func (s *Shell) Run(ctx context.Context) error {
	log := s.Log
	if log == nil {
		log = logging.Discard()
	}
	if s.Root.Welcome != nil && *s.Root.Welcome != "" {
		if _, err := fmt.Fprintln(s.Out, *s.Root.Welcome); err != nil {
			return err
		}
	}
	sc := bufio.NewScanner(s.In)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := io.WriteString(s.Out, Prompt); err != nil {
			return err
		}
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return fmt.Errorf("read command: %w", err)
			}
			_, err := fmt.Fprintln(s.Out)
			return err
		}
		if err := s.Handle(log, sc.Text()); err != nil {
			return err
		}
	}
}

// Handle answers a single input line.
func (s *Shell) Handle(log *slog.Logger, line string) error {
	log.Debug("got command", "cmd", line)
	node, matched, rest := s.Root.Resolve(line)
	log.Debug("resolved command", "matched", matched, "remaining", rest)
	switch rest {
	case "":
		return nil
	case "?":
		return WriteHelp(s.Out, node)
	case "??":
		return WriteLongHelp(s.Out, node)
	}
	if node.Command != nil && *node.Command != "" {
		// the remainder is the command's arguments
		log.Debug("executable command", "command", *node.Command, "args", rest)
		return nil
	}
	_, err := fmt.Fprintln(s.Out, "Don't know how to handle that command!")
	return err
}
