// Package db provides the embedded database schema and development seed data.
package db

import _ "embed"

// Schema contains the DDL statements for all application tables.
//
//go:embed migrations/001_schema.sql
var Schema string

// SeedProducts contains the development catalog as JSON. Both the seed-db
// tool and the in-memory storage driver load it.
//
//go:embed seed/products.json
var SeedProducts []byte
