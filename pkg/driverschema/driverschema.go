// Package driverschema exposes JSON Schema documents for each registered
// driver's Params struct, grounded on the teacher's "dfs config schema"
// command (cmd/dfs/commands/config/schema.go): the same
// github.com/invopop/jsonschema reflector, retargeted from the whole
// process config to one driver's connection params so the admin UI can
// render a form per storage type.
package driverschema

import (
	"github.com/invopop/jsonschema"

	"github.com/cloudcrate/filegate/pkg/driver"
	"github.com/cloudcrate/filegate/pkg/driver/local"
	"github.com/cloudcrate/filegate/pkg/driver/onedrive"
	"github.com/cloudcrate/filegate/pkg/driver/s3"
	"github.com/cloudcrate/filegate/pkg/driver/webdav"
)

func reflector() *jsonschema.Reflector {
	return &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
}

// ForType returns the JSON Schema for storageType's Params struct, or false
// if storageType has no known schema.
func ForType(storageType driver.Type) (*jsonschema.Schema, bool) {
	r := reflector()

	var (
		schema *jsonschema.Schema
		title  string
	)
	switch storageType {
	case driver.TypeLocal:
		schema = r.Reflect(&local.Params{})
		title = "Local filesystem mount parameters"
	case driver.TypeS3:
		schema = r.Reflect(&s3.Params{})
		title = "S3-compatible storage parameters"
	case driver.TypeWebDAV:
		schema = r.Reflect(&webdav.Params{})
		title = "WebDAV storage parameters"
	case driver.TypeOneDrive:
		schema = r.Reflect(&onedrive.Params{})
		title = "OneDrive (Microsoft Graph) storage parameters"
	default:
		return nil, false
	}

	schema.Version = "https://json-schema.org/draft/2020-12/schema"
	schema.Title = title
	return schema, true
}

// All returns every registered driver type's schema, keyed by type, for a
// single "list the available backends and their config shape" response.
func All() map[driver.Type]*jsonschema.Schema {
	out := make(map[driver.Type]*jsonschema.Schema, 4)
	for _, t := range []driver.Type{driver.TypeLocal, driver.TypeS3, driver.TypeWebDAV, driver.TypeOneDrive} {
		if schema, ok := ForType(t); ok {
			out[t] = schema
		}
	}
	return out
}
