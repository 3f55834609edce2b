// Package migrations embeds the SQL schema files.
// Files follow {version}_{name}.up.sql / {version}_{name}.down.sql and are applied in version order.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed *.sql
var files embed.FS

// Up returns the contents of every up migration in ascending version order.
func Up() ([]string, error) {
	return load(".up.sql", false)
}

// Down returns the contents of every down migration in descending version order.
func Down() ([]string, error) {
	return load(".down.sql", true)
}

func load(suffix string, reverse bool) ([]string, error) {
	names, err := fs.Glob(files, "*"+suffix)
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}

	sort.Strings(names)
	if reverse {
		sort.Sort(sort.Reverse(sort.StringSlice(names)))
	}

	scripts := make([]string, 0, len(names))
	for _, name := range names {
		data, err := files.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		if sql := strings.TrimSpace(string(data)); sql != "" {
			scripts = append(scripts, sql)
		}
	}

	return scripts, nil
}
