package fs

import (
	"fmt"
	"strings"

	"bcup-go/internal/bcup"
)

// NameRules rejects paths whose components carry characters the target
// filesystem cannot store. Rejected paths join the detector's skipped set,
// so a FAT-formatted backup drive degrades per file instead of failing the
// run. Character sets follow the usual filename restrictions per system.
type NameRules struct {
	forbidden string
}

// RulesFor returns the name rules for a target filesystem kind. The empty
// string selects posix.
func RulesFor(kind string) (*NameRules, error) {
	switch kind {
	case "", "posix":
		return &NameRules{}, nil
	case "ntfs":
		return &NameRules{forbidden: `"*:<>?\|`}, nil
	case "fat32":
		return &NameRules{forbidden: `"*:<>?\|+,;=[]`}, nil
	default:
		return nil, fmt.Errorf("%w: unknown target filesystem %q", bcup.ErrInvalidConfig, kind)
	}
}

// Allowed reports whether every component of the relative path is storable.
func (r *NameRules) Allowed(relPath string) bool {
	if r.forbidden == "" {
		return true
	}
	for _, name := range strings.Split(relPath, "/") {
		if strings.ContainsAny(name, r.forbidden) {
			return false
		}
	}
	return true
}

var _ bcup.PathRules = (*NameRules)(nil)
