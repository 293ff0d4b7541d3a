// Package discovery locates the schema file and the application root by
// walking up from a starting directory.
package discovery

import (
	"errors"
	"os"
	"path/filepath"
)

var (
	// ErrSchemaNotFound is returned when no schema file exists at or above
	// the starting directory.
	ErrSchemaNotFound = errors.New("schema file not found")

	// ErrAppRootNotFound is returned when no application root exists at or
	// above the starting directory.
	ErrAppRootNotFound = errors.New("application root not found")
)

// SchemaCandidates are the paths, relative to each visited directory, that
// may hold the schema.
var SchemaCandidates = []string{
	"schema.prisma",
	filepath.Join("prisma", "schema.prisma"),
}

// AppRootMarker identifies an application directory.
const AppRootMarker = "package.json"

// SourceDir is preferred as output root when the application has one.
const SourceDir = "src"

// Lookup resolves a path starting from a directory. It reports false when
// nothing was found.
type Lookup func(start string) (string, bool)

// FindSchema returns the first schema candidate found in start or one of its
// parents.
func FindSchema(start string) (string, bool) {
	var found string
	walkUp(start, func(dir string) bool {
		for _, c := range SchemaCandidates {
			p := filepath.Join(dir, c)
			if isFile(p) {
				found = p
				return true
			}
		}
		return false
	})
	return found, found != ""
}

// FindAppRoot returns the nearest directory at or above start holding an
// AppRootMarker. When that directory has a SourceDir, the SourceDir is
// returned instead.
func FindAppRoot(start string) (string, bool) {
	var found string
	walkUp(start, func(dir string) bool {
		if !isFile(filepath.Join(dir, AppRootMarker)) {
			return false
		}
		found = dir
		if src := filepath.Join(dir, SourceDir); isDir(src) {
			found = src
		}
		return true
	})
	return found, found != ""
}

// Resolve returns explicit when set, otherwise the result of lookup from
// start, otherwise notFound.
func Resolve(explicit, start string, lookup Lookup, notFound error) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if p, ok := lookup(start); ok {
		return p, nil
	}
	return "", notFound
}

// walkUp calls visit for start and each parent until visit returns true or
// the filesystem root has been visited.
func walkUp(start string, visit func(dir string) bool) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return
	}
	for {
		if visit(dir) {
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

func isFile(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.Mode().IsRegular()
}

func isDir(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}
