// Package db embeds the Postgres migrations and the quick-add catalog seed.
package db

import "embed"

//go:embed pg/*.sql seed/*.yaml
var Files embed.FS

const (
	MigrationsDir = "pg"
	CatalogSeed   = "seed/common_grocery_items.yaml"
)
