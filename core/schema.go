package core

import (
	"context"
	_ "embed"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

//go:embed schema.sql
var schemaSQL string

// ApplySchema creates the portal tables when they do not exist yet.
func ApplySchema(ctx context.Context, db *pgxpool.Pool) error {
	// no arguments: pgx sends this over the simple protocol, so multiple statements are fine
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return errors.Wrap(err, "apply schema")
	}
	return nil
}
