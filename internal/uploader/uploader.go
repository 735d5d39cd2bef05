// Package uploader orchestrates the variant pipeline: it renders one
// resized encoding per size-catalog entry, writes each through a storage
// backend, and assembles the resulting URL map.
package uploader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"runtime"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/fpang/image-variants/internal/config"
	"github.com/fpang/image-variants/internal/encoder"
	"github.com/fpang/image-variants/internal/errs"
	"github.com/fpang/image-variants/internal/naming"
	"github.com/fpang/image-variants/internal/sizes"
	"github.com/fpang/image-variants/internal/storage"
)

// Orchestrator uploads a complete variant set per source image. Safe for
// concurrent use; all state is set at construction.
type Orchestrator struct {
	cfg         *config.Config
	catalog     *sizes.Catalog
	backend     storage.Backend
	naming      naming.Policy
	concurrency int
}

// Option adjusts orchestrator construction.
type Option func(*Orchestrator)

// WithConcurrency bounds the encode-and-upload worker pool. Values below 1
// mean sequential.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n < 1 {
			n = 1
		}
		o.concurrency = n
	}
}

// WithDeterministicNames disables unique-identifier injection, so repeated
// uploads of the same file name overwrite their previous objects.
func WithDeterministicNames() Option {
	return func(o *Orchestrator) { o.naming.GenerateUnique = false }
}

// New builds an Orchestrator from configuration and a storage backend. The
// size catalog is resolved here; catalog problems surface as config errors
// before any image is touched.
func New(cfg *config.Config, backend storage.Backend, opts ...Option) (*Orchestrator, error) {
	if backend == nil {
		return nil, errs.Config("uploader.new", "storage backend must not be nil")
	}
	catalog, err := sizes.Resolve(cfg)
	if err != nil {
		return nil, err
	}
	o := &Orchestrator{
		cfg:     cfg,
		catalog: catalog,
		backend: backend,
		naming: naming.Policy{
			Extension:      cfg.OutputFormat.Extension(),
			GenerateUnique: true,
		},
		concurrency: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Catalog returns the resolved size catalog.
func (o *Orchestrator) Catalog() *sizes.Catalog { return o.catalog }

// UploadSet renders every catalog variant of the source, uploads each under
// destPrefix, and returns the assembled URL map.
//
// The contract is all-or-nothing: the first decode, encode or storage
// failure aborts the remaining work and is returned; no partial map is
// ever produced. Variants already uploaded when a later one fails are left
// in place (no compensating deletes).
func (o *Orchestrator) UploadSet(ctx context.Context, src encoder.Source, destPrefix string) (URLMap, error) {
	return o.uploadAll(ctx, src, destPrefix, o.naming.BuildName, encoder.OptionsFromConfig(o.cfg))
}

// uploadAll is the shared fan-out used by UploadSet and UploadFor. Each
// catalog entry is encoded and uploaded by a pool worker; the first error
// cancels the group's context so in-flight uploads are abandoned.
func (o *Orchestrator) uploadAll(
	ctx context.Context,
	src encoder.Source,
	destPrefix string,
	buildName func(originalName, variantName string) string,
	opts encoder.Options,
) (URLMap, error) {
	img, err := encoder.DecodeSource(src)
	if err != nil {
		return nil, err
	}

	var objectMeta map[string]string
	if !opts.StripMetadata {
		meta, err := encoder.ExtractMetadata(src)
		if err != nil {
			return nil, errs.Decode("uploader.metadata", err)
		}
		objectMeta = meta.AsObjectMetadata()
	}

	specs := o.catalog.Specs()
	uploaded := make([]Uploaded, len(specs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			variant, err := encoder.EncodeImage(img, encoder.NamedWidth(spec.Width), opts)
			if err != nil {
				return annotate(err, spec.Name)
			}
			variant.Name = spec.Name

			key := path.Join(destPrefix, buildName(src.Name(), spec.Name))
			ref, err := o.backend.Put(gctx, key, bytes.NewReader(variant.Data), storage.PutOptions{
				ContentType:  variant.Format.ContentType(),
				CacheControl: fmt.Sprintf("public, max-age=%d", o.cfg.CacheMaxAge),
				Metadata:     objectMeta,
			})
			if err != nil {
				return annotate(err, spec.Name)
			}

			log.Debug().
				Str("variant", spec.Name).
				Int("width", variant.Width).
				Str("key", key).
				Int("bytes", len(variant.Data)).
				Msg("Variant uploaded")

			uploaded[i] = Uploaded{Name: spec.Name, Width: spec.Width, Ref: ref}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	urls := AssembleURLMap(uploaded)

	log.Info().
		Str("source", src.Name()).
		Int("variants", len(uploaded)).
		Str("default", urls[KeyDefault]).
		Msg("Variant set uploaded")

	return urls, nil
}

// annotate tags a pipeline error with the variant it failed on.
func annotate(err error, variantName string) error {
	var pe *errs.PipelineError
	if errors.As(err, &pe) {
		return pe.WithVariant(variantName)
	}
	return fmt.Errorf("variant %s: %w", variantName, err)
}
