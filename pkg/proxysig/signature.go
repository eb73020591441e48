// Package proxysig implements ProxySignature (C11): HMAC-SHA256 signed
// tokens that authorize requests to the /api/p/<path> and /api/s/<slug>
// proxy endpoints without exposing backend credentials to the client.
package proxysig

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cloudcrate/filegate/pkg/apperrors"
	"github.com/cloudcrate/filegate/pkg/models"
)

// DefaultExpiresIn is used when a StorageConfig's SignatureExpiresIn is 0.
const DefaultExpiresIn = 3600 * time.Second

// SkewTolerance bounds how far into the future a signature's timestamp may
// sit, to absorb clock drift between issuer and verifier.
const SkewTolerance = 60 * time.Second

// Signer issues and verifies proxy signatures. The secret is derived once
// per mount from the process-wide encryption key, the same way the teacher
// derives per-resource subkeys from a single root secret.
type Signer struct {
	processSecret []byte
}

// NewSigner constructs a Signer from the process-wide encryption secret
// (the same ENCRYPTION_SECRET used by pkg/storageconfig).
func NewSigner(processSecret string) *Signer {
	return &Signer{processSecret: []byte(processSecret)}
}

func (s *Signer) mountKey(mountID string) []byte {
	mac := hmac.New(sha256.New, s.processSecret)
	mac.Write([]byte("proxysig:" + mountID))
	return mac.Sum(nil)
}

// Sign returns a base64url token and its timestamp for path, valid for the
// given mount.
func (s *Signer) Sign(path, mountID string, now time.Time) (token string, ts int64) {
	ts = now.Unix()
	sig := s.compute(path, mountID, ts)
	return base64.RawURLEncoding.EncodeToString(sig), ts
}

// Verify checks a signature token against path/mountID/timestamp, applying
// expiresIn (0 = DefaultExpiresIn) and SkewTolerance.
func (s *Signer) Verify(path, mountID, token string, ts int64, expiresIn time.Duration, now time.Time) error {
	if expiresIn <= 0 {
		expiresIn = DefaultExpiresIn
	}
	issued := time.Unix(ts, 0)
	if issued.Before(now.Add(-expiresIn)) {
		return apperrors.ProxySignature("signature expired")
	}
	if issued.After(now.Add(SkewTolerance)) {
		return apperrors.ProxySignature("signature timestamp is in the future")
	}

	want := s.compute(path, mountID, ts)
	got, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return apperrors.ProxySignature("malformed signature")
	}
	if subtle.ConstantTimeCompare(want, got) != 1 {
		return apperrors.ProxySignature("signature mismatch")
	}
	return nil
}

func (s *Signer) compute(path, mountID string, ts int64) []byte {
	mac := hmac.New(sha256.New, s.mountKey(mountID))
	canonical := strings.Join([]string{path, strconv.FormatInt(ts, 10), mountID}, "\n")
	mac.Write([]byte(canonical))
	return mac.Sum(nil)
}

// QueryParams returns the query-string fragment ("sig=...&ts=...") to
// append to a proxy URL.
func (s *Signer) QueryParams(path, mountID string, now time.Time) string {
	token, ts := s.Sign(path, mountID, now)
	return fmt.Sprintf("sig=%s&ts=%d", token, ts)
}

// Requirement is the result of needsSignature(mount): whether verification
// is mandatory for requests against this mount, why, and at what strength.
type Requirement struct {
	Required bool
	Reason   string
	Level    string // "none", "standard", "strict"
}

// NeedsSignature computes the mount-level signature policy from
// mount.WebProxy and mount.WebDAVPolicy (spec.md §4.11).
func NeedsSignature(mount *models.Mount) Requirement {
	if mount.WebDAVPolicy == models.WebDAVPolicySignedProxy {
		return Requirement{Required: true, Reason: "webdav_policy=signed_proxy", Level: "strict"}
	}
	if mount.WebProxy {
		return Requirement{Required: true, Reason: "mount.web_proxy enabled", Level: "standard"}
	}
	return Requirement{Required: false, Reason: "mount does not proxy through the core", Level: "none"}
}
