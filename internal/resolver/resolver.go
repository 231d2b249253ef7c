// Package resolver ties reference parsing, file location, and the table
// cache together into the label resolution operations.
package resolver

import (
	"context"
	"fmt"

	"label-resolver/internal/labelfile"
	"label-resolver/internal/labelref"
	"label-resolver/internal/textutil"
	"label-resolver/internal/worker"

	"github.com/rs/zerolog/log"
)

// DefaultLanguage is assumed whenever a caller leaves the language blank,
// and is the file-level fallback when a requested language has no file.
const DefaultLanguage = "en-US"

// Result is the outcome of resolving a single reference. Found false with a
// nil error means the reference was syntactically broken or simply has no
// label; the two are distinguished only in the logs.
type Result struct {
	Text        string `json:"text"`
	Description string `json:"description"`
	Found       bool   `json:"found"`
}

// BatchResult aggregates a multi-reference resolution. Found maps the
// original reference strings to their texts; callers derive misses by
// comparing against their input.
type BatchResult struct {
	Found          map[string]string `json:"found"`
	RequestedCount int               `json:"requestedCount"`
	FoundCount     int               `json:"foundCount"`
}

// Locator finds label files on disk.
type Locator interface {
	Find(fileID, language string) (string, error)
	Languages(pkg, model, fileID string) ([]string, error)
	LabelFiles(pkg, model, language string) ([]string, error)
}

// Cache holds parsed label tables keyed by file path.
type Cache interface {
	GetOrParse(path string) labelfile.Table
	Clear()
}

// Resolver is the resolution engine. It is safe for concurrent use; the
// cache is the only shared mutable state.
type Resolver struct {
	locator Locator
	cache   Cache
	workers int
}

// New creates a Resolver. workers bounds the per-batch parallelism; values
// below one are raised to one.
func New(loc Locator, cache Cache, workers int) *Resolver {
	if workers < 1 {
		workers = 1
	}
	return &Resolver{
		locator: loc,
		cache:   cache,
		workers: workers,
	}
}

// Resolve looks up a single label reference in the given language. An
// invalid reference resolves to Found false, not an error. A missing root
// returns an error satisfying errors.Is with locator.ErrNotConfigured.
func (r *Resolver) Resolve(ctx context.Context, reference, language string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	lang := normalize(language)

	ref, err := labelref.Parse(reference)
	if err != nil {
		log.Warn().Err(err).Str("reference", reference).Msg("Skipping invalid label reference")
		return Result{}, nil
	}

	path, err := r.findPath(ref.FileID, lang)
	if err != nil {
		return Result{}, err
	}
	if path == "" {
		log.Debug().Str("reference", reference).Str("language", lang).Msg("No label file provides this reference")
		return Result{}, nil
	}

	entry, ok := r.cache.GetOrParse(path)[ref.LabelID]
	if !ok {
		log.Debug().Str("reference", reference).Str("language", lang).Str("path", path).Msg("Label ID not present in file")
		return Result{}, nil
	}

	log.Debug().
		Str("reference", reference).
		Str("language", lang).
		Str("text", textutil.Truncate(entry.Text, 48)).
		Msg("Resolved label")
	return Result{Text: entry.Text, Description: entry.Description, Found: true}, nil
}

// batchRef keeps the original string alongside its parsed form so the found
// map can be keyed exactly as the caller wrote each reference.
type batchRef struct {
	raw string
	ref labelref.Reference
}

// fileGroup bundles every reference pointing into one label file, so the
// file is located and parsed at most once per batch.
type fileGroup struct {
	fileID string
	refs   []batchRef
}

// ResolveBatch resolves many references in one call. Invalid references are
// dropped with a warning; distinct file IDs are resolved in parallel, each
// located and parsed at most once.
func (r *Resolver) ResolveBatch(ctx context.Context, references []string, language string) (BatchResult, error) {
	lang := normalize(language)

	groups := make(map[string][]batchRef)
	var order []string
	for _, raw := range references {
		ref, err := labelref.Parse(raw)
		if err != nil {
			log.Warn().Err(err).Str("reference", raw).Msg("Skipping invalid label reference")
			continue
		}
		if _, seen := groups[ref.FileID]; !seen {
			order = append(order, ref.FileID)
		}
		groups[ref.FileID] = append(groups[ref.FileID], batchRef{raw: raw, ref: ref})
	}

	inputs := make([]fileGroup, 0, len(order))
	for _, fileID := range order {
		inputs = append(inputs, fileGroup{fileID: fileID, refs: groups[fileID]})
	}

	pool := worker.NewPool(r.workers, func(ctx context.Context, g fileGroup) (map[string]string, error) {
		return r.resolveGroup(g, lang)
	})
	outcomes := pool.Run(ctx, inputs)
	if err := ctx.Err(); err != nil {
		return BatchResult{}, err
	}

	result := BatchResult{
		Found:          make(map[string]string),
		RequestedCount: len(references),
	}
	for _, o := range outcomes {
		if o.Err != nil {
			return BatchResult{}, o.Err
		}
		for raw, text := range o.Value {
			result.Found[raw] = text
		}
	}
	result.FoundCount = len(result.Found)

	log.Info().
		Int("requested", result.RequestedCount).
		Int("found", result.FoundCount).
		Int("files", len(inputs)).
		Str("language", lang).
		Msg("Resolved label batch")
	return result, nil
}

// resolveGroup locates and reads one label file, then answers every
// reference in the group from its table.
func (r *Resolver) resolveGroup(g fileGroup, lang string) (map[string]string, error) {
	path, err := r.findPath(g.fileID, lang)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, nil
	}

	table := r.cache.GetOrParse(path)
	found := make(map[string]string)
	for _, br := range g.refs {
		if entry, ok := table[br.ref.LabelID]; ok {
			found[br.raw] = entry.Text
		}
	}
	return found, nil
}

// findPath locates the label file for fileID in lang, falling back to the
// default language's file when lang has none. The fallback is file-level
// only: a file that exists but lacks a label ID is a plain miss.
func (r *Resolver) findPath(fileID, lang string) (string, error) {
	path, err := r.locator.Find(fileID, lang)
	if err != nil {
		return "", fmt.Errorf("locate label file %s: %w", fileID, err)
	}
	if path == "" && lang != DefaultLanguage {
		path, err = r.locator.Find(fileID, DefaultLanguage)
		if err != nil {
			return "", fmt.Errorf("locate label file %s: %w", fileID, err)
		}
	}
	return path, nil
}

// Languages lists the languages available for fileID under package/model.
func (r *Resolver) Languages(pkg, model, fileID string) ([]string, error) {
	return r.locator.Languages(pkg, model, fileID)
}

// LabelFiles lists the label file IDs available for language under
// package/model.
func (r *Resolver) LabelFiles(pkg, model, language string) ([]string, error) {
	return r.locator.LabelFiles(pkg, model, language)
}

// ClearCache drops every cached label table. The next resolution re-reads
// from disk.
func (r *Resolver) ClearCache() {
	r.cache.Clear()
}

func normalize(language string) string {
	if language == "" {
		return DefaultLanguage
	}
	return language
}
