package policy

import (
	"testing"

	"github.com/cloudcrate/filegate/pkg/principal"
)

func TestEngine_AdminBypass(t *testing.T) {
	e := New()
	admin := principal.Admin("root")
	pol := NewPolicy(MountDelete, "nope")
	if err := e.Evaluate(admin, pol); err != nil {
		t.Fatalf("admin should bypass: %v", err)
	}
}

func TestEngine_RequiredPermissions(t *testing.T) {
	e := New()
	key := principal.Principal{Kind: principal.KindAPIKey, ID: "k1", BasicPath: "/", Authorities: MountView}
	pol := NewPolicy(MountUpload, "upload denied")
	if err := e.Evaluate(key, pol); err == nil {
		t.Fatal("expected authorization error")
	}

	key.Authorities = MountView | MountUpload
	if err := e.Evaluate(key, pol); err != nil {
		t.Fatalf("expected pass: %v", err)
	}
}

func TestEngine_PathCheckNavigation(t *testing.T) {
	e := New()
	key := principal.Principal{Kind: principal.KindAPIKey, ID: "k1", BasicPath: "/scope", Authorities: MountView}
	pol := NewPolicy(MountView, "scope denied").WithPathCheck(ModeNavigation, "/scope/sub")
	if err := e.Evaluate(key, pol); err != nil {
		t.Fatalf("expected pass: %v", err)
	}

	pol2 := NewPolicy(MountView, "scope denied").WithPathCheck(ModeNavigation, "/other")
	if err := e.Evaluate(key, pol2); err == nil {
		t.Fatal("expected authorization error for unrelated path")
	}
}

func TestEngine_CustomPredicate(t *testing.T) {
	e := New()
	key := principal.Principal{Kind: principal.KindAPIKey, ID: "k1", BasicPath: "/", Authorities: FileShare}
	pol := NewPolicy(FileShare, "owner only").WithCustomPredicate(func(p principal.Principal) bool {
		return p.ID == "owner"
	})
	if err := e.Evaluate(key, pol); err == nil {
		t.Fatal("expected denial for non-owner")
	}
}
