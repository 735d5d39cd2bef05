// Package naming derives destination object names for uploaded variants.
package naming

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Policy controls how variant file names are built.
type Policy struct {
	// Extension is the output file extension without the dot, e.g. "webp".
	Extension string

	// GenerateUnique substitutes a freshly generated 128-bit identifier for
	// the original base name on every call. Use it to avoid key collisions
	// on repeated uploads; leave it off to get deterministic names that
	// overwrite on re-upload.
	GenerateUnique bool
}

// BuildName derives the destination file name for one variant of a source
// file: "{variant}_{base}.{ext}". With GenerateUnique the base is replaced
// by a new random identifier, so repeated calls never collide.
func (p Policy) BuildName(originalFileName, variantName string) string {
	base := strings.TrimSuffix(filepath.Base(originalFileName), filepath.Ext(originalFileName))
	if base == "" || base == "." {
		// Anonymous in-memory sources have no file name to derive from.
		base = "image"
	}
	if p.GenerateUnique {
		base = uuid.NewString()
	}
	return variantName + "_" + base + "." + p.Extension
}

// BuildName is the package-level form of Policy.BuildName.
func BuildName(originalFileName, variantName string, generateUnique bool, extension string) string {
	return Policy{Extension: extension, GenerateUnique: generateUnique}.BuildName(originalFileName, variantName)
}
