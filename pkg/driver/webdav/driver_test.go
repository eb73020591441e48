package webdav

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDriver_RemotePathAppliesPrefix(t *testing.T) {
	d := &Driver{keyPrefix: "tenant-a"}
	assert.Equal(t, "/tenant-a/docs/report.pdf", d.remotePath("/docs/report.pdf"))
}

func TestDriver_RemotePathWithoutPrefix(t *testing.T) {
	d := &Driver{}
	assert.Equal(t, "/docs/report.pdf", d.remotePath("docs/report.pdf"))
}

func TestBasicAuthHeader(t *testing.T) {
	got := basicAuthHeader("alice", "secret")
	assert.Equal(t, "Basic YWxpY2U6c2VjcmV0", got)
}

func TestNew_RejectsMissingEndpoint(t *testing.T) {
	_, err := New(Params{}, Credentials{})
	assert.Error(t, err)
}
