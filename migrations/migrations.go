// Package migrations embeds the goose SQL schema for the backoffice database.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
