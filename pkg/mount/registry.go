// Package mount implements MountRegistry (C2): longest-prefix resolution of
// virtual paths to persisted Mount rows, and principal-scoped accessible
// mount enumeration.
package mount

import (
	"context"
	"strings"

	"github.com/cloudcrate/filegate/pkg/apperrors"
	"github.com/cloudcrate/filegate/pkg/models"
	gpath "github.com/cloudcrate/filegate/pkg/path"
	"github.com/cloudcrate/filegate/pkg/principal"
	"github.com/cloudcrate/filegate/pkg/store"
)

// Resolution is the result of resolving a virtual path to a mount.
type Resolution struct {
	Mount     *models.Mount
	SubPath   string
	MountPath string
}

// Registry resolves virtual paths against persisted Mount rows.
type Registry struct {
	store store.MountStore
	acl   store.ACLStore
}

// New constructs a Registry backed by the given stores.
func New(mountStore store.MountStore, aclStore store.ACLStore) *Registry {
	return &Registry{store: mountStore, acl: aclStore}
}

// ResolveByPath finds the active mount with the longest mount_path that is
// an ancestor of path. Root ("/") is rejected with AuthorizationError; no
// match is NotFoundError.
func (r *Registry) ResolveByPath(ctx context.Context, rawPath string) (*Resolution, error) {
	p := gpath.Normalize(rawPath, false)
	if p == "/" {
		return nil, apperrors.Authorization("operation on root not allowed")
	}

	mounts, err := r.store.ListActiveMounts(ctx)
	if err != nil {
		return nil, apperrors.Repository(err, "failed to list mounts")
	}

	for _, m := range mounts {
		mp := gpath.Normalize(m.MountPath, false)
		if p == mp || strings.HasPrefix(p, mp+"/") {
			subPath := strings.TrimPrefix(p, mp)
			if subPath == "" {
				subPath = "/"
			}
			return &Resolution{Mount: m, SubPath: subPath, MountPath: mp}, nil
		}
	}

	return nil, apperrors.NotFound("no mount found for path %q", rawPath)
}

// FindAccessibleFor returns the active mounts a principal may use: ADMIN
// sees all of them; API_KEY is filtered to mounts under its basic_path
// scope, then further restricted to configs listed in its storage ACL (if
// any row exists) or to is_public configs otherwise.
func (r *Registry) FindAccessibleFor(ctx context.Context, pr principal.Principal) ([]*models.Mount, error) {
	mounts, err := r.store.ListActiveMounts(ctx)
	if err != nil {
		return nil, apperrors.Repository(err, "failed to list mounts")
	}

	if pr.Kind == principal.KindAdmin {
		return mounts, nil
	}

	scoped := make([]*models.Mount, 0, len(mounts))
	for _, m := range mounts {
		if gpath.CanNavigate(pr.BasicPath, m.MountPath) {
			scoped = append(scoped, m)
		}
	}

	if pr.Kind != principal.KindAPIKey {
		return scoped, nil
	}

	aclRows, err := r.acl.ListACLForSubject(ctx, models.SubjectTypeAPIKey, pr.ID)
	if err != nil {
		return nil, apperrors.Repository(err, "failed to list storage ACL")
	}

	if len(aclRows) > 0 {
		allowed := make(map[string]bool, len(aclRows))
		for _, row := range aclRows {
			allowed[row.StorageConfigID] = true
		}
		out := make([]*models.Mount, 0, len(scoped))
		for _, m := range scoped {
			if allowed[m.StorageConfigID] {
				out = append(out, m)
			}
		}
		return out, nil
	}

	// No ACL rows: fall back to is_public configs. Filtering here would
	// require a join; the caller (FileSystem) filters by IsPublic once it
	// has the StorageConfig rows in hand, so scoped is returned as-is and
	// FileSystem applies the is_public fallback centrally.
	return scoped, nil
}
