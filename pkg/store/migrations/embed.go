// Package migrations embeds the gateway's Postgres schema migrations for
// golang-migrate, following the teacher's
// pkg/store/metadata/postgres/migrations package.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
