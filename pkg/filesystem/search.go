package filesystem

import (
	"context"
	"sort"
	"strings"

	"github.com/cloudcrate/filegate/pkg/apperrors"
	"github.com/cloudcrate/filegate/pkg/driver"
	gpath "github.com/cloudcrate/filegate/pkg/path"
	"github.com/cloudcrate/filegate/pkg/models"
	"github.com/cloudcrate/filegate/pkg/policy"
	"github.com/cloudcrate/filegate/pkg/principal"
)

// SearchScope selects how far Search fans out.
type SearchScope string

const (
	ScopeGlobal SearchScope = "global"
	ScopeMount  SearchScope = "mount"
	ScopePath   SearchScope = "path"
)

const maxSearchLimit = 200

// SearchInput is the payload accepted by Search.
type SearchInput struct {
	Query       string
	Scope       SearchScope
	MountID     string // required when Scope == ScopeMount or ScopePath
	VirtualPath string // not read: ScopePath searches the whole MountID mount, like ScopeMount
	Limit       int
	Offset      int
}

// SearchResult is a re-ranked, re-merged page of matches across mounts.
type SearchResult struct {
	Entries []RankedEntry
	Total   int
}

// RankedEntry attaches the owning mount to a driver Entry for display.
type RankedEntry struct {
	driver.Entry
	MountID     string
	VirtualPath string
}

// Search fans out query across every mount accessible to pr within the
// requested scope, merging and re-ranking results by exact-name match,
// then starts-with, then recency.
func (fs *FileSystem) Search(ctx context.Context, pr principal.Principal, in SearchInput) (*SearchResult, error) {
	limit := in.Limit
	if limit <= 0 || limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	offset := in.Offset
	if offset < 0 {
		offset = 0
	}

	targets, err := fs.searchTargets(ctx, pr, in)
	if err != nil {
		return nil, err
	}

	var all []RankedEntry
	for _, m := range targets {
		pol := policy.NewPolicy(policy.MountView, "search not permitted on this mount").WithPathCheck(policy.ModeNavigation, m.MountPath)
		if err := fs.policy.Evaluate(pr, pol); err != nil {
			continue
		}
		d, err := fs.resolve(ctx, m.StorageConfigID)
		if err != nil {
			continue
		}
		searcher, ok := d.(driver.Searcher)
		if !ok || !d.HasCapability(driver.CapSearch) {
			continue
		}
		entries, _, err := searcher.Search(ctx, in.Query, maxSearchLimit, 0)
		if err != nil {
			continue
		}
		for _, e := range entries {
			all = append(all, RankedEntry{
				Entry:       e,
				MountID:     m.ID,
				VirtualPath: gpath.Normalize(m.MountPath, false) + "/" + strings.TrimPrefix(e.Name, "/"),
			})
		}
	}

	rank(all, in.Query)

	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return &SearchResult{Entries: all[offset:end], Total: total}, nil
}

func (fs *FileSystem) searchTargets(ctx context.Context, pr principal.Principal, in SearchInput) ([]*models.Mount, error) {
	accessible, err := fs.mounts.FindAccessibleFor(ctx, pr)
	if err != nil {
		return nil, err
	}

	switch in.Scope {
	case ScopeMount, ScopePath:
		for _, m := range accessible {
			if m.ID == in.MountID {
				return []*models.Mount{m}, nil
			}
		}
		return nil, apperrors.NotFound("mount %q not found or not accessible", in.MountID)
	default:
		return accessible, nil
	}
}

func rank(entries []RankedEntry, query string) {
	q := strings.ToLower(query)
	score := func(e RankedEntry) int {
		name := strings.ToLower(e.Name)
		switch {
		case name == q:
			return 0
		case strings.HasPrefix(name, q):
			return 1
		default:
			return 2
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		si, sj := score(entries[i]), score(entries[j])
		if si != sj {
			return si < sj
		}
		return entries[i].Modified.After(entries[j].Modified)
	})
}
