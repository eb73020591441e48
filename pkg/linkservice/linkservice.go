// Package linkservice implements LinkService (C10): it decides, per
// spec.md §4.10's decision tables, whether a caller gets a local in-app
// URL, a signed proxy URL, a direct storage URL, or an upstream-fetch
// descriptor for a given share or mount/path.
package linkservice

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudcrate/filegate/pkg/driver"
	"github.com/cloudcrate/filegate/pkg/models"
	"github.com/cloudcrate/filegate/pkg/proxysig"
)

// Mode selects which decision table LinkService applies.
type Mode int

const (
	// ModeClient produces a URL the browser itself will fetch.
	ModeClient Mode = iota
	// ModeUpstream produces what a reverse-proxy upstream should fetch on
	// the caller's behalf.
	ModeUpstream
)

// Link is the result handed back to the API layer.
type Link struct {
	URL     string
	Headers map[string]string
	Reason  string // which decision-table row fired, for logging/tests
}

// DriverResolver obtains an already-initialized driver for a StorageConfig.
type DriverResolver func(ctx context.Context, storageConfigID string) (driver.Base, error)

// Service is the C10 orchestrator.
type Service struct {
	resolve     DriverResolver
	signer      *proxysig.Signer
	apiBaseURL  string // e.g. "https://gateway.example.com", used for /api/s and /api/p URLs
}

// New constructs a Service. apiBaseURL is prefixed to every in-app URL this
// service produces; pass "" to emit root-relative paths.
func New(resolve DriverResolver, signer *proxysig.Signer, apiBaseURL string) *Service {
	return &Service{resolve: resolve, signer: signer, apiBaseURL: apiBaseURL}
}

// ShareLinkInput describes a share record's link context.
type ShareLinkInput struct {
	Slug            string
	StorageConfigID string
	StoragePath     string
	UseProxy        bool
	URLProxyHost    string // config.url_proxy, empty if unset
	SignatureExpiresIn time.Duration
	ForceDownload   bool
}

// ForShare resolves the URL for a share record per the "client mode" /
// "upstream mode" share rows of spec.md §4.10's decision table.
func (s *Service) ForShare(ctx context.Context, mode Mode, in ShareLinkInput) (*Link, error) {
	if mode == ModeUpstream {
		return s.forShareUpstream(ctx, in)
	}
	return s.forShareClient(ctx, in)
}

func (s *Service) forShareClient(ctx context.Context, in ShareLinkInput) (*Link, error) {
	if in.UseProxy {
		return &Link{URL: s.path(fmt.Sprintf("/api/s/%s?mode=inline", in.Slug)), Reason: "share.use_proxy"}, nil
	}
	if in.URLProxyHost != "" {
		url, headers := s.signedRewrite(in.URLProxyHost, fmt.Sprintf("/share/%s", in.Slug), in.StorageConfigID, in.SignatureExpiresIn)
		return &Link{URL: url, Headers: headers, Reason: "share.url_proxy"}, nil
	}

	d, err := s.resolve(ctx, in.StorageConfigID)
	if err == nil {
		if direct, ok := directLink(ctx, d, in.StoragePath); ok {
			return &Link{URL: direct, Reason: "share.direct_link"}, nil
		}
	}
	return &Link{URL: s.path(fmt.Sprintf("/api/s/%s?mode=inline", in.Slug)), Reason: "share.fallback_local"}, nil
}

func (s *Service) forShareUpstream(ctx context.Context, in ShareLinkInput) (*Link, error) {
	d, err := s.resolve(ctx, in.StorageConfigID)
	if err == nil {
		if direct, ok := directLink(ctx, d, in.StoragePath); ok {
			return &Link{URL: direct, Reason: "share.upstream_direct"}, nil
		}
		if up, ok := d.(driver.UpstreamHTTP); ok && d.HasCapability(driver.CapUpstreamHTTP) {
			req, err := up.GenerateUpstreamRequest(ctx, in.StoragePath)
			if err == nil {
				return &Link{URL: req.URL, Headers: req.Headers, Reason: "share.upstream_http"}, nil
			}
		}
	}
	return &Link{URL: s.path(fmt.Sprintf("/api/s/%s?mode=download", in.Slug)), Reason: "share.upstream_fallback_local"}, nil
}

// FSLinkInput describes a mount/path link context.
type FSLinkInput struct {
	MountID            string
	VirtualPath        string
	StorageConfigID     string
	StoragePath         string
	MountWebProxy       bool
	MountSignatureNeeded bool
	URLProxyHost        string
	SignatureExpiresIn  time.Duration
	ForceDownload       bool
}

// ForPath resolves the URL for an FS (mount-scoped) object per spec.md
// §4.10's FS rows.
func (s *Service) ForPath(ctx context.Context, mode Mode, in FSLinkInput) (*Link, error) {
	if mode == ModeUpstream {
		return s.forPathUpstream(ctx, in)
	}
	return s.forPathClient(ctx, in)
}

func (s *Service) forPathClient(ctx context.Context, in FSLinkInput) (*Link, error) {
	if in.MountWebProxy {
		return &Link{URL: s.signedProxyPath(in.VirtualPath, in.MountID, in.MountSignatureNeeded), Reason: "fs.web_proxy"}, nil
	}
	if in.URLProxyHost != "" {
		url, headers := s.signedRewrite(in.URLProxyHost, in.VirtualPath, in.MountID, in.SignatureExpiresIn)
		return &Link{URL: url, Headers: headers, Reason: "fs.url_proxy"}, nil
	}

	d, err := s.resolve(ctx, in.StorageConfigID)
	if err == nil {
		if d.HasCapability(driver.CapDirectLink) {
			if direct, ok := directLink(ctx, d, in.StoragePath); ok {
				return &Link{URL: direct, Reason: "fs.direct_link"}, nil
			}
		}
		if presigner, ok := d.(driver.Presigner); ok && d.HasCapability(driver.CapPresigned) {
			res, err := presigner.GenerateDownloadURL(ctx, in.StoragePath)
			if err == nil {
				return &Link{URL: res.URL, Headers: res.Headers, Reason: "fs.presigned"}, nil
			}
		}
	}
	return &Link{URL: s.signedProxyPath(in.VirtualPath, in.MountID, true), Reason: "fs.signed_fallback"}, nil
}

func (s *Service) forPathUpstream(ctx context.Context, in FSLinkInput) (*Link, error) {
	d, err := s.resolve(ctx, in.StorageConfigID)
	if err == nil {
		if up, ok := d.(driver.UpstreamHTTP); ok && d.HasCapability(driver.CapUpstreamHTTP) {
			req, err := up.GenerateUpstreamRequest(ctx, in.StoragePath)
			if err == nil {
				return &Link{URL: req.URL, Headers: req.Headers, Reason: "fs.upstream_http"}, nil
			}
		}
	}
	return &Link{URL: s.signedProxyPath(in.VirtualPath, in.MountID, true), Reason: "fs.upstream_signed"}, nil
}

func directLink(ctx context.Context, d driver.Base, storagePath string) (string, bool) {
	dl, ok := d.(driver.DirectLinkProvider)
	if !ok || !d.HasCapability(driver.CapDirectLink) {
		return "", false
	}
	return dl.DirectLink(ctx, storagePath)
}

func (s *Service) path(p string) string {
	return s.apiBaseURL + p
}

func (s *Service) signedProxyPath(virtualPath, mountID string, signed bool) string {
	p := fmt.Sprintf("/api/p%s", virtualPath)
	if !signed || s.signer == nil {
		return s.path(p)
	}
	query := s.signer.QueryParams(virtualPath, mountID, time.Now())
	return s.path(p + "?" + query)
}

func (s *Service) signedRewrite(host, objectPath, scopeID string, expiresIn time.Duration) (string, map[string]string) {
	query := ""
	if s.signer != nil {
		query = "?" + s.signer.QueryParams(objectPath, scopeID, time.Now())
	}
	return fmt.Sprintf("https://%s%s%s", host, objectPath, query), nil
}
