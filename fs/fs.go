// Package appfs embeds the database migrations and the email templates.
package appfs

import "embed"

//go:embed migrations/*.sql templates/email/* assets/*
var FS embed.FS

// MigrationsDir is the directory of the goose migrations within FS.
const MigrationsDir = "migrations"
