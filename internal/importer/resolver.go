package importer

import (
	"fmt"
	"strings"

	"github.com/pennywise-app/pennywise_backend/internal/core/domain"
)

// CreationPlan describes the accounts that must be created to satisfy an
// unmatched reference: the existing parent to attach to ("" for a new root) and
// the missing segments, parents first. The last missing segment is the leaf the
// reference resolves to.
type CreationPlan struct {
	Type        domain.AccountType
	Segments    []string // Full (possibly capped) path of the target leaf
	ParentID    string   // Existing account to attach the first missing segment under
	ParentDepth int      // 0 when ParentID is empty
	Missing     []string // Segments to create, ordered root-most first
}

// Resolution is the outcome of resolving one reference: either an existing
// account id, or a plan to create the missing chain.
type Resolution struct {
	AccountID string
	Plan      *CreationPlan
}

// Resolver maps raw account references onto a ledger's chart of accounts.
// It indexes every account by its full dotted path (walking parent pointers to
// the root) and by leaf name for backward-compatible fallback matching.
// Resolution is idempotent within one reconciliation run: accounts created
// during the run are registered back via Bind, so resolving the same reference
// again returns the same id.
type Resolver struct {
	byID   map[string]domain.Account
	byPath map[string]domain.Account
	byName map[string]domain.Account
}

// NewResolver builds the path and leaf-name indices from the ledger's existing
// accounts. Full paths are computed iteratively over a parent index; the depth
// cap keeps chains short, but the walk is defensive about cycles anyway.
func NewResolver(accounts []domain.Account) *Resolver {
	r := &Resolver{
		byID:   make(map[string]domain.Account, len(accounts)),
		byPath: make(map[string]domain.Account, len(accounts)),
		byName: make(map[string]domain.Account, len(accounts)),
	}
	for _, acc := range accounts {
		r.byID[acc.AccountID] = acc
	}
	for _, acc := range accounts {
		r.byPath[r.fullPath(acc)] = acc
		r.byName[acc.Name] = acc
	}
	return r
}

func (r *Resolver) fullPath(acc domain.Account) string {
	segments := []string{acc.Name}
	parentID := acc.ParentAccountID
	for i := 0; parentID != "" && i < domain.MaxAccountDepth; i++ {
		parent, ok := r.byID[parentID]
		if !ok {
			break
		}
		segments = append([]string{parent.Name}, segments...)
		parentID = parent.ParentAccountID
	}
	return strings.Join(segments, ".")
}

// Account returns an indexed account by id.
func (r *Resolver) Account(id string) (domain.Account, bool) {
	acc, ok := r.byID[id]
	return acc, ok
}

// Path returns the full dotted path of an indexed account.
func (r *Resolver) Path(id string) (string, bool) {
	acc, ok := r.byID[id]
	if !ok {
		return "", false
	}
	return r.fullPath(acc), true
}

// Resolve maps a reference to an existing account or a creation plan.
// Matching order: exact full path, then leaf name with equal declared type.
// Untyped flat references can match by name but never produce a creation plan.
// Paths deeper than the hierarchy cap are capped to their first three segments;
// the capped leaf is what the reference resolves to.
func (r *Resolver) Resolve(ref AccountRef) (Resolution, error) {
	if ref.IsZero() {
		return Resolution{}, fmt.Errorf("cannot resolve empty account reference")
	}

	segments := ref.Segments
	if len(segments) > domain.MaxAccountDepth {
		segments = segments[:domain.MaxAccountDepth]
	}
	path := strings.Join(segments, ".")

	if acc, ok := r.byPath[path]; ok {
		if ref.Type == "" || acc.AccountType == ref.Type {
			return Resolution{AccountID: acc.AccountID}, nil
		}
		// A same-named path of the wrong type is not a match; resolution
		// continues with the leaf fallback and creation planning.
	}

	leaf := segments[len(segments)-1]
	if acc, ok := r.byName[leaf]; ok {
		// A same-named leaf of the wrong type is not a match.
		if ref.Type == "" || acc.AccountType == ref.Type {
			return Resolution{AccountID: acc.AccountID}, nil
		}
	}

	if ref.Type == "" {
		return Resolution{}, fmt.Errorf("unresolvable account reference %q: no match and no declared type to create from", ref.Raw)
	}

	plan := &CreationPlan{Type: ref.Type, Segments: segments, Missing: segments}
	for i := len(segments) - 1; i >= 1; i-- {
		prefix := strings.Join(segments[:i], ".")
		if acc, ok := r.byPath[prefix]; ok {
			if acc.AccountType != ref.Type {
				return Resolution{}, fmt.Errorf("cannot create %q: existing ancestor %q has type %s, reference declares %s", path, prefix, acc.AccountType, ref.Type)
			}
			plan.ParentID = acc.AccountID
			plan.ParentDepth = acc.Depth
			plan.Missing = segments[i:]
			break
		}
	}
	return Resolution{Plan: plan}, nil
}

// Bind registers an account created during the current run so that subsequent
// resolutions of the same path reuse it.
func (r *Resolver) Bind(acc domain.Account) {
	r.byID[acc.AccountID] = acc
	r.byPath[r.fullPath(acc)] = acc
	r.byName[acc.Name] = acc
}
