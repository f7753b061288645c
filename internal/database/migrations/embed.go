// Package migrations embeds the SQL schema for each supported driver.
package migrations

import "embed"

// FS holds mysql/*.up.sql and sqlite/*.up.sql.
//
//go:embed mysql/*.sql sqlite/*.sql
var FS embed.FS
