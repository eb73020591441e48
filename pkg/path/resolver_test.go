package path

import "testing"

func TestNormalize_Idempotence(t *testing.T) {
	cases := []string{"", "/", "a/b", "//a//b//", "/a/b/", "a", "/a/b"}
	for _, c := range cases {
		for _, isDir := range []bool{false, true} {
			once := Normalize(c, isDir)
			twice := Normalize(once, isDir)
			if once != twice {
				t.Errorf("Normalize(%q,%v) not idempotent: %q vs %q", c, isDir, once, twice)
			}
		}
	}
}

func TestNormalize_LeadingSlashAndCollapse(t *testing.T) {
	if got := Normalize("a//b///c", false); got != "/a/b/c" {
		t.Errorf("got %q", got)
	}
	if got := Normalize("/a/b/", false); got != "/a/b" {
		t.Errorf("got %q", got)
	}
	if got := Normalize("/a/b", true); got != "/a/b/" {
		t.Errorf("got %q", got)
	}
	if got := Normalize("/", true); got != "/" {
		t.Errorf("got %q", got)
	}
}

func TestIsSelfOrSub(t *testing.T) {
	tests := []struct {
		src, dst string
		want     bool
	}{
		{"/a", "/a", true},
		{"/a", "/a/b", true},
		{"/a", "/ab", false},
		{"/a/b", "/a", false},
	}
	for _, tt := range tests {
		if got := IsSelfOrSub(tt.src, tt.dst); got != tt.want {
			t.Errorf("IsSelfOrSub(%q,%q) = %v, want %v", tt.src, tt.dst, got, tt.want)
		}
	}
}

func TestCanNavigate(t *testing.T) {
	tests := []struct {
		base, target string
		want         bool
	}{
		{"/", "/anything/deep", true},
		{"/a/b", "/a/b", true},
		{"/a/b", "/a/b/c", true},
		{"/a/b", "/a", true},  // strict ancestor of base
		{"/a/b", "/", true},   // root is an ancestor of everything
		{"/a/b", "/c", false}, // unrelated
	}
	for _, tt := range tests {
		if got := CanNavigate(tt.base, tt.target); got != tt.want {
			t.Errorf("CanNavigate(%q,%q) = %v, want %v", tt.base, tt.target, got, tt.want)
		}
	}
}
