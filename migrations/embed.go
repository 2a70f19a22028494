// Package migrations embeds the SQL schema applied by the server at boot.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
