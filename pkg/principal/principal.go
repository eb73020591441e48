// Package principal defines the acting-identity value the core operates
// on. Principals are request-scoped and never persisted by the core itself
// (authentication and token issuance are external collaborators); the
// APIKey row in pkg/models is the durable shape behind KindAPIKey.
package principal

// Kind enumerates the three identity classes the core recognizes.
type Kind string

const (
	KindAdmin     Kind = "ADMIN"
	KindAPIKey    Kind = "API_KEY"
	KindAnonymous Kind = "ANONYMOUS"
)

// Authority is a single permission bit (see pkg/policy for the full set).
type Authority = uint32

// Principal is the request-scoped acting identity.
type Principal struct {
	Kind Kind
	ID   string

	// BasicPath is the API-Key scope prefix; defaults to "/" (unscoped)
	// for ADMIN and ANONYMOUS.
	BasicPath string

	// Authorities is the permission bitmask evaluated by PolicyEngine.
	Authorities Authority

	// KeyInfo carries the backing APIKey row's label for API_KEY
	// principals; empty for ADMIN/ANONYMOUS.
	KeyInfo string
}

// IsAdmin reports whether the principal bypasses ordinary policy checks.
func (p Principal) IsAdmin() bool { return p.Kind == KindAdmin }

// Admin constructs the well-known administrative principal.
func Admin(id string) Principal {
	return Principal{Kind: KindAdmin, ID: id, BasicPath: "/", Authorities: ^uint32(0)}
}

// Anonymous constructs the zero-privilege principal used for unauthenticated
// public-share access.
func Anonymous() Principal {
	return Principal{Kind: KindAnonymous, BasicPath: "/"}
}
