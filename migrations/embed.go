// Package migrations nhúng schema SQL vào binary (cmd/migrate).
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
