// Package appfs embeds the files the app needs at runtime.
package appfs

import "embed"

//go:embed migrations/*.sql
var FS embed.FS
