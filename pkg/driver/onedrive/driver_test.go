package onedrive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDriver_ItemURLRoot(t *testing.T) {
	d := &Driver{baseURL: "https://graph.microsoft.com/v1.0/me/drive"}
	assert.Equal(t, "https://graph.microsoft.com/v1.0/me/drive/root/children", d.itemURL("", "/children"))
}

func TestDriver_ItemURLWithPrefix(t *testing.T) {
	d := &Driver{baseURL: "https://graph.microsoft.com/v1.0/me/drive", keyPrefix: "tenant-a"}
	assert.Equal(t, "https://graph.microsoft.com/v1.0/me/drive/root:/tenant-a%2Fdocs%2Freport.pdf:/content", d.itemURL("/docs/report.pdf", "/content"))
}

func TestNew_RejectsMissingToken(t *testing.T) {
	_, err := New(Params{}, Credentials{})
	assert.Error(t, err)
}
