// Package locator discovers label files under a metadata root laid out as
//
//	{root}/{package}/{model}/AxLabelFile/LabelResources/{language}/{fileId}.{language}.label.txt
//
// Several packages may provide the same file id and language; enumeration is
// lexicographic by package then model, and the last provider wins.
package locator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// Suffix is the extension shared by every label resource file.
const Suffix = ".label.txt"

const (
	labelFileDir = "AxLabelFile"
	resourceDir  = "LabelResources"
)

// ErrNotConfigured reports a missing or unset metadata root. It is distinct
// from a label file simply not existing, which is not an error.
var ErrNotConfigured = errors.New("label root not configured")

// Locator resolves (fileID, language) pairs to concrete file paths.
type Locator struct {
	root string
}

// New creates a Locator over root. An empty root is allowed; every
// operation then fails with ErrNotConfigured until a configured Locator
// replaces it.
func New(root string) (*Locator, error) {
	if root == "" {
		return &Locator{}, nil
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}
	return &Locator{root: abs}, nil
}

// Root returns the absolute metadata root, or "" when unset.
func (l *Locator) Root() string {
	return l.root
}

func (l *Locator) checkRoot() error {
	if l.root == "" {
		return ErrNotConfigured
	}
	info, err := os.Stat(l.root)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotConfigured, l.root)
	}
	return nil
}

// Find returns the path of the label file providing fileID in language, or
// "" when no package does. Packages and models are visited in lexicographic
// order and the last match wins, so a later-sorting package overlays an
// earlier one.
func (l *Locator) Find(fileID, language string) (string, error) {
	if err := l.checkRoot(); err != nil {
		return "", err
	}

	name := fileID + "." + language + Suffix
	var found string
	for _, pkg := range subdirs(l.root) {
		for _, model := range subdirs(filepath.Join(l.root, pkg)) {
			candidate := filepath.Join(l.root, pkg, model, labelFileDir, resourceDir, language, name)
			if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
				found = candidate
			}
		}
	}
	return found, nil
}

// Languages lists the languages for which package/model carries fileID, in
// sorted order. A missing subtree yields an empty list.
func (l *Locator) Languages(pkg, model, fileID string) ([]string, error) {
	if err := l.checkRoot(); err != nil {
		return nil, err
	}

	resources := filepath.Join(l.root, pkg, model, labelFileDir, resourceDir)
	var langs []string
	for _, lang := range subdirs(resources) {
		name := fileID + "." + lang + Suffix
		if info, err := os.Stat(filepath.Join(resources, lang, name)); err == nil && info.Mode().IsRegular() {
			langs = append(langs, lang)
		}
	}
	return langs, nil
}

// LabelFiles lists the label file IDs package/model provides for language,
// in sorted order. A missing subtree yields an empty list.
func (l *Locator) LabelFiles(pkg, model, language string) ([]string, error) {
	if err := l.checkRoot(); err != nil {
		return nil, err
	}

	dir := filepath.Join(l.root, pkg, model, labelFileDir, resourceDir, language)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", dir).Msg("Error reading directory")
		}
		return nil, nil
	}

	suffix := "." + language + Suffix
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if name := e.Name(); strings.HasSuffix(name, suffix) {
			ids = append(ids, strings.TrimSuffix(name, suffix))
		}
	}
	return ids, nil
}

// subdirs lists the immediate subdirectories of dir. os.ReadDir returns
// entries sorted by name, which fixes the enumeration order.
func subdirs(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", dir).Msg("Error reading directory")
		}
		return nil
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names
}
