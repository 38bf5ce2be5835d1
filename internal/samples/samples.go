// Package samples is a catalogue of hand-built reference modules. Each
// sample drives the builder the way a front end would and is used by the
// command line tool and the golden tests.
package samples

import (
	"fmt"
	"sort"

	"github.com/arc-language/core-builder/internal/logging"
	"github.com/arc-language/core-builder/internal/session"
)

// Sample builds one module into a fresh session
type Sample struct {
	Name        string
	Description string
	Build       func(s *session.Session) error
}

var registry = map[string]Sample{}

func register(s Sample) {
	if _, dup := registry[s.Name]; dup {
		panic(fmt.Sprintf("samples: duplicate sample %q", s.Name))
	}
	registry[s.Name] = s
}

// Names returns the registered sample names, sorted
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Lookup finds a sample by name
func Lookup(name string) (Sample, bool) {
	s, ok := registry[name]
	return s, ok
}

// All returns every sample ordered by name
func All() []Sample {
	out := make([]Sample, 0, len(registry))
	for _, n := range Names() {
		out = append(out, registry[n])
	}
	return out
}

// Run builds the sample into a new session named after it. The builder is
// released before returning; the caller owns the session's module.
func (s Sample) Run(logger *logging.Logger) (*session.Session, error) {
	sess := session.New(s.Name, logger)
	defer sess.Close()

	if err := s.Build(sess); err != nil {
		return nil, fmt.Errorf("sample %s: %w", s.Name, err)
	}
	return sess, nil
}
