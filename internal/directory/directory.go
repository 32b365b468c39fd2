// Package directory resolves recipient PayTags to display names. The
// resolver is an external collaborator from the authorizer's point of view;
// a miss is a normal outcome, not an error.
package directory

import (
	"context"
	"strings"
)

// Resolver looks up the display name for a PayTag. Resolution is
// deterministic for a given tag within a session.
type Resolver interface {
	Resolve(ctx context.Context, tag string) (name string, ok bool, err error)
}

// Static is an in-memory directory. Lookups are case-insensitive.
type Static struct {
	names map[string]string
}

// NewStatic builds a directory from tag -> display name entries.
func NewStatic(entries map[string]string) *Static {
	names := make(map[string]string, len(entries))
	for tag, name := range entries {
		names[strings.ToLower(tag)] = name
	}
	return &Static{names: names}
}

// Default returns the demo directory.
func Default() *Static {
	return NewStatic(map[string]string{
		"@sarah_j": "Sarah Johnson",
		"@mike_c":  "Mike Chen",
		"@lisa_w":  "Lisa Wong",
		"@john_d":  "John Doe",
		"@emma_s":  "Emma Smith",
	})
}

func (s *Static) Resolve(ctx context.Context, tag string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	name, ok := s.names[strings.ToLower(tag)]
	return name, ok, nil
}
