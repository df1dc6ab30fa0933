package session

import (
	"context"
	"log/slog"
	"strings"

	"github.com/chazu/meshsync/pkg/ctxlog"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// sourceChange lists the plan lines removed and added between two cycles.
type sourceChange struct {
	Removed []string
	Added   []string
}

// diffSource compares two plan sources line by line.
func diffSource(before, after string) sourceChange {
	dmp := diffmatchpatch.New()
	beforeChars, afterChars, lineArray := dmp.DiffLinesToChars(withNewline(before), withNewline(after))
	diffs := dmp.DiffMain(beforeChars, afterChars, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var change sourceChange
	for _, d := range diffs {
		lines := strings.Split(d.Text, "\n")
		if len(lines) > 0 && lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			change.Removed = append(change.Removed, lines...)
		case diffmatchpatch.DiffInsert:
			change.Added = append(change.Added, lines...)
		}
	}
	return change
}

func withNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

// logSourceChange records the new plan source and, at debug level, what
// changed since the previous cycle.
func (s *Session) logSourceChange(ctx context.Context, source string) {
	s.mu.Lock()
	before := s.lastSource
	s.lastSource = source
	s.mu.Unlock()

	logger := ctxlog.FromContext(ctx)
	if before == source || !logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	change := diffSource(before, source)
	logger.Debug("Plan source changed",
		"removed", strings.Join(change.Removed, "\n"),
		"added", strings.Join(change.Added, "\n"),
	)
}
