// Package migrations embeds the SQL schema.
package migrations

import (
	"embed"
	"io/fs"
	"sort"
)

// Files embeds the ordered migration scripts.
//
//go:embed *.sql
var Files embed.FS

// Ordered returns the migration file names in apply order.
func Ordered() ([]string, error) {
	names, err := fs.Glob(Files, "*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}
