// Package migrations holds the versioned schema for the local cache
// database, compiled into the binary so the app can migrate the
// on-device file without shipping loose SQL.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
