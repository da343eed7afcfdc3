// Package stimulus resolves the on-disk stimulus set for a task variant.
//
// Stimuli live under <stim_dir>/<variant>/<category>/*.jpg. Resolve reads
// each category directory exactly once; the resulting Catalog is immutable
// and its enumeration order is fixed for the lifetime of the session.
package stimulus

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/CodexForgeBR/gfmt/internal/config"
)

// Extension is the only file suffix accepted as a stimulus. The match is
// case-sensitive.
const Extension = ".jpg"

// Stimulus is one image of the task.
type Stimulus struct {
	// Identity is the slash-separated path relative to the stimulus root,
	// e.g. "short/same/001.jpg". It is unique within a catalog.
	Identity string
	Category string
	// Path is the file location used to load the image.
	Path string
}

// Catalog is the ordered, read-only set of stimuli for one variant.
// Order is category order, then directory listing order within a category.
type Catalog struct {
	variant    string
	categories []string
	stimuli    []Stimulus
	index      map[string]int
}

// Resolve enumerates the stimuli for variant. A category without a
// directory or without matching files contributes nothing; any other
// filesystem error is returned.
func Resolve(cfg *config.Config, variant string) (*Catalog, error) {
	c := &Catalog{
		variant:    variant,
		categories: append([]string(nil), cfg.StimTypes...),
		index:      make(map[string]int),
	}

	for _, category := range cfg.StimTypes {
		dir := filepath.Join(cfg.StimDir, variant, category)
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read stimulus dir %s: %w", dir, err)
		}

		for _, entry := range entries {
			name := entry.Name()
			if !strings.HasSuffix(name, Extension) || len(name) == len(Extension) {
				continue
			}
			p := filepath.Join(dir, name)
			if !isRegularFile(entry, p) {
				continue
			}
			s := Stimulus{
				Identity: path.Join(variant, category, name),
				Category: category,
				Path:     p,
			}
			c.index[s.Identity] = len(c.stimuli)
			c.stimuli = append(c.stimuli, s)
		}
	}

	return c, nil
}

// isRegularFile accepts regular files and symlinks that resolve to one.
func isRegularFile(entry fs.DirEntry, p string) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

// Variant returns the task variant the catalog was resolved for.
func (c *Catalog) Variant() string { return c.variant }

// Len returns the number of stimuli.
func (c *Catalog) Len() int { return len(c.stimuli) }

// Stimuli returns a copy of the stimuli in catalog order.
func (c *Catalog) Stimuli() []Stimulus {
	return append([]Stimulus(nil), c.stimuli...)
}

// At returns the i-th stimulus in catalog order.
func (c *Catalog) At(i int) Stimulus { return c.stimuli[i] }

// Lookup returns the stimulus with the given identity.
func (c *Catalog) Lookup(identity string) (Stimulus, bool) {
	i, ok := c.index[identity]
	if !ok {
		return Stimulus{}, false
	}
	return c.stimuli[i], true
}

// CategoryCount is the number of stimuli resolved for one category.
type CategoryCount struct {
	Category string
	Count    int
}

// Counts returns the per-category stimulus counts in configured order,
// including categories that resolved to zero files.
func (c *Catalog) Counts() []CategoryCount {
	byCategory := make(map[string]int, len(c.categories))
	for _, s := range c.stimuli {
		byCategory[s.Category]++
	}
	counts := make([]CategoryCount, 0, len(c.categories))
	for _, category := range c.categories {
		counts = append(counts, CategoryCount{Category: category, Count: byCategory[category]})
	}
	return counts
}
