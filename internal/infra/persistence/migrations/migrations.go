// Package migrations embeds the goose SQL migrations of the schema and runs them.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"regexp"
	"strings"

	"qimat/internal/errors"

	"github.com/pressly/goose/v3"
)

const dir = "sql"

//go:embed sql/*.sql
var files embed.FS

var fileNameRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

// Run executes a goose command (up, down, status, version, redo, reset) against db.
func Run(ctx context.Context, db *sql.DB, command string, args ...string) error {
	if db == nil {
		return errors.New("db is required")
	}

	goose.SetBaseFS(files)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "set goose dialect")
	}

	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return errors.Wrapf(err, "goose %s", command)
	}

	return nil
}

// Validate checks the embedded file names and goose annotations.
func Validate() error {
	entries, err := fs.ReadDir(files, dir)
	if err != nil {
		return errors.Wrap(err, "read embedded migrations")
	}

	seen := make(map[string]string, len(entries))
	for _, entry := range entries {
		name := entry.Name()

		m := fileNameRe.FindStringSubmatch(name)
		if m == nil {
			return errors.Errorf("invalid migration filename %q", name)
		}
		if prev, ok := seen[m[1]]; ok {
			return errors.Errorf("duplicate migration version %s in %q and %q", m[1], prev, name)
		}
		seen[m[1]] = name

		body, err := fs.ReadFile(files, dir+"/"+name)
		if err != nil {
			return errors.Wrapf(err, "read %s", name)
		}
		for _, marker := range []string{"-- +goose Up", "-- +goose Down"} {
			if !strings.Contains(string(body), marker) {
				return errors.Errorf("migration %q missing %q", name, marker)
			}
		}
	}

	return nil
}
