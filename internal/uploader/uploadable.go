package uploader

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fpang/image-variants/internal/config"
	"github.com/fpang/image-variants/internal/encoder"
	"github.com/fpang/image-variants/internal/errs"
	"github.com/fpang/image-variants/internal/naming"
)

// Uploadable is the capability interface for types that customize how
// their images are validated, placed and transformed. Embed BaseUploadable
// and override individual methods instead of implementing from scratch.
type Uploadable interface {
	// Validate rejects sources this uploadable will not accept.
	Validate(src encoder.Source) error

	// StorageDir is the destination key prefix for this uploadable.
	StorageDir() string

	// Filename builds the destination file name for one variant.
	Filename(originalName, variantName string) string

	// Transform returns the encode options applied to every variant.
	Transform() encoder.Options
}

// BaseUploadable is the default Uploadable implementation: it accepts any
// decodable extension, stores under Dir, names files with the standard
// naming policy, and encodes with the process configuration.
type BaseUploadable struct {
	Cfg *config.Config
	Dir string
	// UniqueNames injects a fresh identifier per upload (the default for
	// collision avoidance); disable for overwrite-on-update semantics.
	UniqueNames bool
}

// Validate accepts in-memory sources and any file whose extension is a
// supported input format.
func (b BaseUploadable) Validate(src encoder.Source) error {
	if src.Path == "" {
		return nil
	}
	ext := filepath.Ext(src.Path)
	if !encoder.IsSupported(ext) {
		return errs.Decode("uploadable.validate",
			fmt.Errorf("%w: %q", errs.ErrUnsupportedFormat, ext))
	}
	return nil
}

// StorageDir returns the configured destination prefix.
func (b BaseUploadable) StorageDir() string { return b.Dir }

// Filename delegates to the standard naming policy.
func (b BaseUploadable) Filename(originalName, variantName string) string {
	return naming.Policy{
		Extension:      b.Cfg.OutputFormat.Extension(),
		GenerateUnique: b.UniqueNames,
	}.BuildName(originalName, variantName)
}

// Transform returns encode options derived from the process configuration.
func (b BaseUploadable) Transform() encoder.Options {
	return encoder.OptionsFromConfig(b.Cfg)
}

// UploadFor runs the complete variant upload for an Uploadable, honoring
// its validation, placement, naming and transform choices.
func (o *Orchestrator) UploadFor(ctx context.Context, u Uploadable, src encoder.Source) (URLMap, error) {
	if err := u.Validate(src); err != nil {
		return nil, err
	}
	return o.uploadAll(ctx, src, u.StorageDir(), u.Filename, u.Transform())
}
