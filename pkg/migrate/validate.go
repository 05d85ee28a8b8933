package migrate

import (
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strings"
)

var sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

// ValidateFS checks filenames and goose headers in every dialect directory under
// root and requires the dialects to carry the same set of versions.
func ValidateFS(fsys fs.FS, root string) error {
	var reference []string
	var referenceDialect string
	for _, dialect := range dialectDirs {
		versions, err := validateDir(fsys, path.Join(root, dialect))
		if err != nil {
			return err
		}
		if reference == nil {
			reference, referenceDialect = versions, dialect
			continue
		}
		if strings.Join(reference, ",") != strings.Join(versions, ",") {
			return fmt.Errorf("migration versions differ between %s %v and %s %v", referenceDialect, reference, dialect, versions)
		}
	}
	return nil
}

func validateDir(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}

	seen := map[string]string{}
	versions := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			return nil, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}
		version := m[1]
		if prev, ok := seen[version]; ok {
			return nil, fmt.Errorf("duplicate migration version %s in %q and %q", version, prev, name)
		}
		seen[version] = name
		versions = append(versions, version)

		b, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read file %q: %w", name, err)
		}
		txt := string(b)
		if !strings.Contains(txt, "-- +goose Up") {
			return nil, fmt.Errorf("migration %q missing \"-- +goose Up\"", name)
		}
		if !strings.Contains(txt, "-- +goose Down") {
			return nil, fmt.Errorf("migration %q missing \"-- +goose Down\"", name)
		}
	}
	sort.Strings(versions)
	return versions, nil
}
