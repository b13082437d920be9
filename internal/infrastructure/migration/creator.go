package migration

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"text/template"
	"time"
)

var (
	unsafeNameChars = regexp.MustCompile(`[^a-z0-9 _-]+`)
	nameSeparators  = regexp.MustCompile(`[ _-]+`)
)

var fileHeader = template.Must(template.New("migration").Parse(
	`-- Migration: {{.File.Name}} ({{.File.Scope}}{{if .Down}}, rollback{{end}})
-- Created: {{.File.Timestamp}}
-- Description: {{if .Down}}Rollback for {{end}}{{.File.Description}}
{{if and (not .Down) (eq .File.Scope "tenant")}}-- Runs inside every tenant schema; do not schema-qualify table names.
{{end}}
`))

// MigrationFile describes a generated up/down pair
type MigrationFile struct {
	Scope       Scope
	Version     string
	Name        string
	Description string
	Timestamp   string
	UpPath      string
	DownPath    string
}

// CreateMigration writes the next numbered migration pair into rootDir/<scope>.
func CreateMigration(rootDir string, scope Scope, name, description string) (*MigrationFile, error) {
	if scope != ScopePublic && scope != ScopeTenant {
		return nil, fmt.Errorf("unknown migration scope %q", scope)
	}
	slug := sanitizeName(name)
	if slug == "" {
		return nil, errors.New("migration name is empty after sanitizing")
	}

	dir := filepath.Join(rootDir, string(scope))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	existing, err := ListMigrationsFS(os.DirFS(dir), ".")
	if err != nil {
		return nil, err
	}

	version := fmt.Sprintf("%06d", nextSequence(existing))
	prefix := filepath.Join(dir, version+"_"+slug)
	mf := &MigrationFile{
		Scope:       scope,
		Version:     version,
		Name:        name,
		Description: description,
		Timestamp:   time.Now().Format(time.RFC3339),
		UpPath:      prefix + ".up.sql",
		DownPath:    prefix + ".down.sql",
	}

	if err := mf.write(mf.UpPath, false); err != nil {
		return nil, err
	}
	if err := mf.write(mf.DownPath, true); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, err
	}
	return mf, nil
}

func (mf *MigrationFile) write(path string, down bool) error {
	var buf bytes.Buffer
	data := struct {
		File *MigrationFile
		Down bool
	}{mf, down}
	if err := fileHeader.Execute(&buf, data); err != nil {
		return fmt.Errorf("render %s: %w", filepath.Base(path), err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// sanitizeName lower-cases name and folds runs of spaces, dashes and
// underscores into one underscore. Other characters are dropped.
func sanitizeName(name string) string {
	s := unsafeNameChars.ReplaceAllString(strings.ToLower(name), "")
	s = nameSeparators.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

func nextSequence(names []string) int {
	highest := 0
	for _, name := range names {
		prefix, _, _ := strings.Cut(name, "_")
		if n, err := strconv.Atoi(prefix); err == nil {
			highest = max(highest, n)
		}
	}
	return highest + 1
}

// ListMigrationsFS returns the sorted base names of the up migrations in dir.
// A missing dir yields an empty list.
func ListMigrationsFS(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read migrations %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		base, ok := strings.CutSuffix(entry.Name(), ".up.sql")
		if ok && !entry.IsDir() {
			names = append(names, base)
		}
	}
	slices.Sort(names)
	return names, nil
}
