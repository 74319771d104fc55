package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// versionLayout is the UTC timestamp prefix of every migration filename.
const versionLayout = "20060102150405"

var fileNameRe = regexp.MustCompile(`^(\d{14})_([a-z0-9_]+)\.sql$`)

type migrationFile struct {
	Version int64
	Name    string
	Path    string
	Body    string
}

// readMigrations loads every .sql file in dir ordered by version. Files whose
// names do not follow the version_name.sql convention are returned in bad.
func readMigrations(dir string) (files []migrationFile, bad []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("read dir %q: %w", dir, err)
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		m := fileNameRe.FindStringSubmatch(e.Name())
		if m == nil {
			bad = append(bad, e.Name())
			continue
		}
		version, _ := strconv.ParseInt(m[1], 10, 64)
		path := filepath.Join(dir, e.Name())
		body, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("read file %q: %w", path, err)
		}
		files = append(files, migrationFile{Version: version, Name: e.Name(), Path: path, Body: string(body)})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Version < files[j].Version })
	return files, bad, nil
}

// nextVersion returns now as a version, bumped past the newest existing file so
// versions stay strictly increasing even when clocks disagree.
func nextVersion(now time.Time, files []migrationFile) int64 {
	version, _ := strconv.ParseInt(now.UTC().Format(versionLayout), 10, 64)
	if len(files) == 0 {
		return version
	}
	latest := files[len(files)-1].Version
	if version > latest {
		return version
	}
	t, err := time.Parse(versionLayout, strconv.FormatInt(latest, 10))
	if err != nil {
		return latest + 1
	}
	bumped, _ := strconv.ParseInt(t.Add(time.Second).Format(versionLayout), 10, 64)
	return bumped
}

// slug lowercases name and collapses every run of other characters into one
// underscore.
func slug(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			pendingSep = false
			continue
		}
		pendingSep = true
	}
	return b.String()
}
