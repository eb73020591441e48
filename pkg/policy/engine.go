// Package policy implements PolicyEngine (C13): bitmask permission checks
// plus per-principal path scope and custom predicates.
package policy

import (
	"github.com/cloudcrate/filegate/pkg/apperrors"
	gpath "github.com/cloudcrate/filegate/pkg/path"
	"github.com/cloudcrate/filegate/pkg/principal"
)

// Permission bits, matching spec.md §4.13.
const (
	TextShare principal.Authority = 1 << iota
	TextManage
	FileShare
	FileManage
	MountView
	MountUpload
	MountCopy
	MountRename
	MountDelete
	WebDAVRead
	WebDAVManage
)

// PathCheckMode selects how Policy.PathCheck validates a request path
// against the principal's basic_path.
type PathCheckMode string

const (
	// ModeNavigation allows the path when CanNavigate(basicPath, path)
	// holds (path under scope, or a strict ancestor reachable for
	// browsing).
	ModeNavigation PathCheckMode = "navigation"
	// ModeExact requires the path to be the scope root or nested under it
	// (IsSelfOrSub), rejecting the "strict ancestor" navigation case.
	ModeExact PathCheckMode = "exact"
)

// PathCheck, when set on a Policy, validates a target path against the
// acting principal's basic_path using Mode.
type PathCheck struct {
	Mode PathCheckMode
	Path string
}

// CustomPredicate is an escape hatch for checks that don't reduce to bits
// or path scope (e.g. "share is owned by this principal").
type CustomPredicate func(p principal.Principal) bool

// Policy is a single authorization rule.
type Policy struct {
	RequiredPermissions principal.Authority
	PathCheck           *PathCheck
	CustomPredicate     CustomPredicate
	Message             string

	// AdminBypass, when false, forces ADMIN principals through the same
	// checks as everyone else. Defaults to true (bypass) when the zero
	// value is used via NewPolicy.
	AdminBypass bool
}

// NewPolicy constructs a Policy with AdminBypass defaulted to true.
func NewPolicy(required principal.Authority, message string) Policy {
	return Policy{RequiredPermissions: required, Message: message, AdminBypass: true}
}

// WithPathCheck attaches a path scope check and returns the policy.
func (p Policy) WithPathCheck(mode PathCheckMode, path string) Policy {
	p.PathCheck = &PathCheck{Mode: mode, Path: path}
	return p
}

// WithCustomPredicate attaches a custom predicate and returns the policy.
func (p Policy) WithCustomPredicate(pred CustomPredicate) Policy {
	p.CustomPredicate = pred
	return p
}

// Engine evaluates Policy values against a Principal.
type Engine struct{}

// New constructs an Engine. The engine is stateless; it holds no
// dependencies because permissions, path, and predicate are all supplied at
// evaluation time.
func New() *Engine { return &Engine{} }

// Evaluate returns nil if pr satisfies policy, or an AuthorizationError
// carrying policy.Message otherwise.
func (e *Engine) Evaluate(pr principal.Principal, policy Policy) error {
	if pr.IsAdmin() && policy.AdminBypass {
		return nil
	}

	if policy.RequiredPermissions != 0 && pr.Authorities&policy.RequiredPermissions != policy.RequiredPermissions {
		return denied(policy)
	}

	if policy.PathCheck != nil {
		ok := false
		switch policy.PathCheck.Mode {
		case ModeExact:
			ok = gpath.IsSelfOrSub(pr.BasicPath, policy.PathCheck.Path)
		default:
			ok = gpath.CanNavigate(pr.BasicPath, policy.PathCheck.Path)
		}
		if !ok {
			return denied(policy)
		}
	}

	if policy.CustomPredicate != nil && !policy.CustomPredicate(pr) {
		return denied(policy)
	}

	return nil
}

func denied(policy Policy) error {
	msg := policy.Message
	if msg == "" {
		msg = "permission denied"
	}
	return apperrors.Authorization("%s", msg)
}
