package session

import (
	"context"
	"strings"
)

// command handles a control word; quit reports that the session should end.
type command func(ctx context.Context, s *Session) (quit bool, err error)

var commands = map[string]command{
	"help": func(_ context.Context, s *Session) (bool, error) {
		s.p.Help()
		return false, nil
	},
	"reset": func(ctx context.Context, s *Session) (bool, error) {
		return false, s.Reset(ctx)
	},
	"history": func(_ context.Context, s *Session) (bool, error) {
		s.p.History(s.history.Turns())
		return false, nil
	},
	"clear": func(_ context.Context, s *Session) (bool, error) {
		if s.opts.Interactive {
			s.p.Clear()
		}
		return false, nil
	},
	"quit": quit,
	"exit": quit,
}

func quit(_ context.Context, s *Session) (bool, error) {
	s.p.Success("Goodbye!")
	return true, nil
}

// lookupCommand matches control words case-insensitively.
func lookupCommand(line string) (command, bool) {
	cmd, ok := commands[strings.ToLower(line)]
	return cmd, ok
}
