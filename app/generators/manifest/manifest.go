// Package manifest persists the content fingerprint of every generated view
// so later runs can skip artifacts whose rendering did not change.
package manifest

import (
	"context"
	"fmt"
	"strings"
)

// CurrentVersion is the manifest format version written by this tool.
const CurrentVersion = "1.0.0"

// DefaultFileName is the manifest file kept inside the output root.
const DefaultFileName = ".routegen-manifest.json"

// ViewType is one of the fixed generated artifact kinds.
type ViewType string

const (
	ViewList   ViewType = "List"
	ViewCreate ViewType = "Create"
	ViewUpdate ViewType = "Update"
	ViewDelete ViewType = "Delete"
	ViewSearch ViewType = "Search"
)

// ViewTypes lists every view kind in generation order.
var ViewTypes = []ViewType{ViewList, ViewCreate, ViewUpdate, ViewDelete, ViewSearch}

// Lower returns the lowercased kind, used for paths and template names.
func (v ViewType) Lower() string { return strings.ToLower(string(v)) }

// ParseViewType accepts a kind name in any letter case.
func ParseViewType(s string) (ViewType, error) {
	for _, v := range ViewTypes {
		if strings.EqualFold(string(v), s) {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown view type %q", s)
}

// GeneratedView records the fingerprint of the last written rendering of one
// (model, view type) pair.
type GeneratedView struct {
	Model    string   `json:"model"`
	ViewType ViewType `json:"viewType"`
	Hash     string   `json:"hash"`
}

// Manifest is the persisted generation state.
type Manifest struct {
	Version        string          `json:"version"`
	GeneratedViews []GeneratedView `json:"generatedViews"`
}

// Default returns an empty manifest at the current version.
func Default() Manifest {
	return Manifest{Version: CurrentVersion, GeneratedViews: []GeneratedView{}}
}

// Lookup returns the first entry matching model and view type.
func (m Manifest) Lookup(model string, vt ViewType) (GeneratedView, bool) {
	for _, gv := range m.GeneratedViews {
		if gv.Model == model && gv.ViewType == vt {
			return gv, true
		}
	}
	return GeneratedView{}, false
}

// Len returns the number of tracked views.
func (m Manifest) Len() int { return len(m.GeneratedViews) }

// Store loads and saves manifests.
//
// Load never fails: a missing or unreadable manifest degrades to Default so
// generation is never blocked, at the cost of rewriting every artifact once.
// Save replaces the stored snapshot entirely.
type Store interface {
	Load(ctx context.Context) Manifest
	Save(ctx context.Context, m Manifest) error
	Location() string
}

// WriteError reports a manifest that could not be persisted.
type WriteError struct {
	Location string
	Err      error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("save manifest %s: %v", e.Location, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
