// Package path implements virtual FS-view path normalization and scope
// checks (C1 in the component table), independent of any mount or storage
// concept.
package path

import "strings"

// Normalize ensures a leading "/", collapses repeated slashes, and strips
// any trailing "/" unless isDirectory is true (in which case a single
// trailing "/" is kept, except for root which is always just "/").
// Normalize is idempotent: Normalize(Normalize(p, d), d) == Normalize(p, d).
func Normalize(p string, isDirectory bool) string {
	if p == "" {
		p = "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	var b strings.Builder
	b.Grow(len(p))
	prevSlash := false
	for _, r := range p {
		if r == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		b.WriteRune(r)
	}
	out := b.String()

	if out == "/" {
		return "/"
	}
	out = strings.TrimSuffix(out, "/")
	if out == "" {
		out = "/"
	}
	if isDirectory && out != "/" {
		out += "/"
	}
	return out
}

// IsSelfOrSub reports whether dst equals src or is nested under src, after
// normalizing both to "/"-separated form.
func IsSelfOrSub(src, dst string) bool {
	src = Normalize(src, false)
	dst = Normalize(dst, false)
	if src == dst {
		return true
	}
	prefix := src
	if prefix != "/" {
		prefix += "/"
	}
	return strings.HasPrefix(dst, prefix)
}

// CanNavigate reports whether a principal scoped to basePath may reach
// target: target equals basePath, is nested under it, or is a strict
// ancestor of it (so a scoped principal may walk up to, but not past,
// their own scope root). A root basePath ("/") always returns true.
func CanNavigate(basePath, target string) bool {
	basePath = Normalize(basePath, false)
	target = Normalize(target, false)

	if basePath == "/" {
		return true
	}
	if IsSelfOrSub(basePath, target) {
		return true
	}
	// target is a strict ancestor of basePath
	return IsSelfOrSub(target, basePath) && target != basePath
}
