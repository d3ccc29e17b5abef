package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const upStub = `-- %s
-- %s

`

const downStub = `-- %s (rollback)
-- %s

`

// Pair is a freshly scaffolded up/down migration file pair.
type Pair struct {
	Version  string
	UpPath   string
	DownPath string
}

// Scaffold writes an empty up/down SQL pair into dir, versioned by the
// current timestamp so files sort in creation order.
func Scaffold(dir, name string) (*Pair, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create migrations dir: %w", err)
	}

	now := time.Now()
	version := now.Format("20060102150405")
	base := version + "_" + slugify(name)

	p := &Pair{
		Version:  version,
		UpPath:   filepath.Join(dir, base+".up.sql"),
		DownPath: filepath.Join(dir, base+".down.sql"),
	}

	stamp := now.Format(time.RFC3339)
	if err := os.WriteFile(p.UpPath, fmt.Appendf(nil, upStub, name, stamp), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", p.UpPath, err)
	}
	if err := os.WriteFile(p.DownPath, fmt.Appendf(nil, downStub, name, stamp), 0o644); err != nil {
		os.Remove(p.UpPath)
		return nil, fmt.Errorf("write %s: %w", p.DownPath, err)
	}
	return p, nil
}

// slugify lowercases a migration name and squeezes separators into
// single underscores. Anything outside [a-z0-9] is dropped.
func slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			s := b.String()
			if s != "" && !strings.HasSuffix(s, "_") {
				b.WriteByte('_')
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// List returns the base names of the up migrations found in dir,
// one entry per version. A missing directory lists as empty.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if base, ok := strings.CutSuffix(e.Name(), ".up.sql"); ok {
			names = append(names, base)
		}
	}
	return names, nil
}
