package importer

import (
	"fmt"
	"strings"

	"github.com/pennywise-app/pennywise_backend/internal/core/domain"
)

// AccountRef is a raw account reference from a statement or a format config:
// either a flat leaf name, or a typed hierarchical path such as
// "L-CreditCards.BankX.CardY" (type prefix + dot-separated segments).
type AccountRef struct {
	Raw      string             `json:"raw"`
	Type     domain.AccountType `json:"type"` // Empty for untyped flat names
	Segments []string           `json:"segments"`
}

var typePrefixes = map[string]domain.AccountType{
	"A": domain.Asset,
	"L": domain.Liability,
	"I": domain.Income,
	"E": domain.Expense,
}

// ParseAccountRef splits a raw reference into its declared type and ordered path
// segments. The type prefix governs classification and is stripped before
// segmentation. A reference without a recognized "X-" prefix is an untyped flat
// name; an unrecognized prefix letter is an error.
func ParseAccountRef(raw string) (AccountRef, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return AccountRef{}, fmt.Errorf("empty account reference")
	}

	ref := AccountRef{Raw: trimmed}
	rest := trimmed
	if i := strings.Index(trimmed, "-"); i > 0 {
		prefix := trimmed[:i]
		if accType, ok := typePrefixes[prefix]; ok {
			ref.Type = accType
			rest = trimmed[i+1:]
		} else if len(prefix) == 1 && prefix[0] >= 'A' && prefix[0] <= 'Z' {
			return AccountRef{}, fmt.Errorf("unknown account type prefix %q in %q", prefix, trimmed)
		}
	}

	for _, seg := range strings.Split(rest, ".") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			return AccountRef{}, fmt.Errorf("empty path segment in account reference %q", trimmed)
		}
		ref.Segments = append(ref.Segments, seg)
	}
	if ref.Type == "" && len(ref.Segments) > 1 {
		return AccountRef{}, fmt.Errorf("hierarchical account reference %q requires a type prefix", trimmed)
	}
	return ref, nil
}

// FullPath is the dotted path without the type prefix.
func (r AccountRef) FullPath() string {
	return strings.Join(r.Segments, ".")
}

// Leaf is the last path segment.
func (r AccountRef) Leaf() string {
	if len(r.Segments) == 0 {
		return ""
	}
	return r.Segments[len(r.Segments)-1]
}

// IsZero reports whether the reference is unset.
func (r AccountRef) IsZero() bool {
	return len(r.Segments) == 0
}
