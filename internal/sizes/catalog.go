// Package sizes resolves the configured size catalog: the ordered set of
// named width variants every upload is rendered at.
package sizes

import (
	"fmt"

	"github.com/fpang/image-variants/internal/config"
	"github.com/fpang/image-variants/internal/errs"
)

// SizeSpec is one catalog entry: a variant name and its target pixel width.
type SizeSpec struct {
	Name  string
	Width int
}

// Catalog is an ordered, name-unique set of size specs. Immutable after
// Resolve; safe for concurrent readers.
type Catalog struct {
	specs  []SizeSpec
	byName map[string]int
}

// Resolve builds a Catalog from configuration, falling back to the built-in
// defaults when no sizes are configured. Duplicate names and non-positive
// widths are config errors. Duplicate widths under distinct names are
// allowed; Max/Min then pick the first in catalog order.
func Resolve(cfg *config.Config) (*Catalog, error) {
	entries := cfg.Sizes
	if len(entries) == 0 {
		entries = config.DefaultSizes
	}

	c := &Catalog{
		specs:  make([]SizeSpec, 0, len(entries)),
		byName: make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if e.Name == "" {
			return nil, errs.Config("sizes.resolve", "size entry with empty name")
		}
		if e.Width <= 0 {
			return nil, errs.Config("sizes.resolve", fmt.Sprintf("size %q has non-positive width %d", e.Name, e.Width))
		}
		if _, dup := c.byName[e.Name]; dup {
			return nil, errs.Config("sizes.resolve", fmt.Sprintf("duplicate size name %q", e.Name))
		}
		c.byName[e.Name] = len(c.specs)
		c.specs = append(c.specs, SizeSpec{Name: e.Name, Width: e.Width})
	}
	return c, nil
}

// Default returns the built-in catalog (xs:320 sm:768 md:1024 lg:1280 xl:1536).
func Default() *Catalog {
	c, err := Resolve(config.Default())
	if err != nil {
		// The built-in defaults are statically valid.
		panic(err)
	}
	return c
}

// Specs returns the catalog entries in configuration order. The returned
// slice must not be mutated.
func (c *Catalog) Specs() []SizeSpec { return c.specs }

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.specs) }

// WidthFor looks up the target width for a variant name. An unknown name is
// a config error.
func (c *Catalog) WidthFor(name string) (int, error) {
	i, ok := c.byName[name]
	if !ok {
		return 0, errs.New(errs.CategoryConfig, "sizes.width_for",
			fmt.Errorf("%w: %q", errs.ErrUnknownVariant, name))
	}
	return c.specs[i].Width, nil
}

// Max returns the entry with the largest width, first in catalog order on a
// tie. The catalog is never empty.
func (c *Catalog) Max() SizeSpec {
	best := c.specs[0]
	for _, s := range c.specs[1:] {
		if s.Width > best.Width {
			best = s
		}
	}
	return best
}

// Min returns the entry with the smallest width, first in catalog order on
// a tie.
func (c *Catalog) Min() SizeSpec {
	best := c.specs[0]
	for _, s := range c.specs[1:] {
		if s.Width < best.Width {
			best = s
		}
	}
	return best
}
