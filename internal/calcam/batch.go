package calcam

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/hay-kot/calcam/internal/core/history"
)

// FileResult is the outcome of estimating one file.
type FileResult struct {
	Path  string        `json:"path"`
	Entry history.Entry `json:"entry"`
	Err   error         `json:"-"`
}

// Accompaniment holds the suggestions for one food item. Err is set when the
// lookup for that item failed.
type Accompaniment struct {
	Food        string   `json:"food"`
	Suggestions []string `json:"suggestions"`
	Err         error    `json:"-"`
}

// ExpandImages resolves each pattern to a sorted list of files. Patterns
// without glob syntax are kept as literal paths. Duplicates are dropped.
func ExpandImages(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}

		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err != nil {
				return nil, fmt.Errorf("no images match %q", pattern)
			}
			matches = []string{pattern}
		}

		sort.Strings(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}

	return out, nil
}

// EstimateFiles estimates every file matched by patterns, in order. A failure
// on one file is recorded in its result and does not stop the others.
func (s *Service) EstimateFiles(ctx context.Context, patterns []string) ([]FileResult, error) {
	paths, err := ExpandImages(patterns)
	if err != nil {
		return nil, err
	}

	results := make([]FileResult, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		entry, err := s.EstimateFile(ctx, path)
		if err != nil {
			s.log.Warn().Err(err).Str("path", path).Msg("estimate failed")
		}
		results = append(results, FileResult{Path: path, Entry: entry, Err: err})
	}

	return results, nil
}

// Accompaniments looks up suggestions for every item concurrently, bounded by
// the configured concurrency. Results keep the order of items.
func (s *Service) Accompaniments(ctx context.Context, items []history.FoodItem) []Accompaniment {
	results := make([]Accompaniment, len(items))

	var g errgroup.Group
	g.SetLimit(s.config.AI.Concurrency)

	for i, item := range items {
		results[i].Food = item.Name
		g.Go(func() error {
			suggestions, err := s.model.SuggestAccompaniments(ctx, item.Name)
			if err != nil {
				s.log.Warn().Err(err).Str("food", item.Name).Msg("accompaniment lookup failed")
			}
			results[i].Suggestions = suggestions
			results[i].Err = err
			return nil
		})
	}

	_ = g.Wait()
	return results
}
