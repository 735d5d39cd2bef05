// Package encoder turns a decoded source image into resized, re-encoded
// variant buffers.
//
// Decoding supports JPEG, PNG, GIF and WebP. Encoding targets WebP (via
// chai2010/webp — the x/image package is decode-only), JPEG and PNG.
// Resizing uses Catmull-Rom resampling from golang.org/x/image/draw and
// always preserves the source aspect ratio; only the width is constrained.
package encoder

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"

	_ "image/gif" // register GIF decoding

	_ "golang.org/x/image/webp" // register WebP decoding

	"github.com/fpang/image-variants/internal/config"
	"github.com/fpang/image-variants/internal/errs"
)

// ThumbnailWidth is the fixed width of the Thumbnail policy. It is not part
// of the size catalog and not configurable.
const ThumbnailWidth = 320

// SupportedExtensions maps decodable input file extensions to MIME types.
var SupportedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// IsSupported reports whether ext (with leading dot, any case) is a
// decodable input extension.
func IsSupported(ext string) bool {
	_, ok := SupportedExtensions[strings.ToLower(ext)]
	return ok
}

// Source is an opaque handle to a decodable image: either a file path or an
// in-memory buffer. The pipeline only ever reads it.
type Source struct {
	Path string
	Data []byte
}

// SourceFromFile returns a Source backed by a file on disk.
func SourceFromFile(path string) Source { return Source{Path: path} }

// SourceFromBytes returns a Source backed by an in-memory buffer.
func SourceFromBytes(data []byte) Source { return Source{Data: data} }

// Name returns the base file name of the source, or "" for anonymous
// in-memory sources.
func (s Source) Name() string {
	if s.Path == "" {
		return ""
	}
	return filepath.Base(s.Path)
}

// Open returns a reader over the source bytes.
func (s Source) Open() (io.ReadCloser, error) {
	if s.Path != "" {
		return os.Open(s.Path)
	}
	if len(s.Data) == 0 {
		return nil, errs.ErrEmptyInput
	}
	return io.NopCloser(bytes.NewReader(s.Data)), nil
}

// PolicyKind distinguishes the three resize policies.
type PolicyKind int

const (
	// KindOriginal re-encodes at native resolution (no resize).
	KindOriginal PolicyKind = iota
	// KindThumbnail resizes to the fixed ThumbnailWidth.
	KindThumbnail
	// KindNamedWidth resizes to an explicit target width.
	KindNamedWidth
)

// Policy selects how a variant is resized before re-encoding.
type Policy struct {
	Kind  PolicyKind
	Width int // target width for KindNamedWidth
}

// Original re-encodes at the source's native resolution.
func Original() Policy { return Policy{Kind: KindOriginal} }

// Thumbnail resizes to the fixed thumbnail width.
func Thumbnail() Policy { return Policy{Kind: KindThumbnail} }

// NamedWidth resizes to the given width, preserving aspect ratio.
func NamedWidth(width int) Policy { return Policy{Kind: KindNamedWidth, Width: width} }

// targetWidth resolves the policy against a source width.
func (p Policy) targetWidth(srcWidth int) int {
	switch p.Kind {
	case KindThumbnail:
		return ThumbnailWidth
	case KindNamedWidth:
		return p.Width
	default:
		return srcWidth
	}
}

// Options carries codec parameters, passed through unchanged. Range
// validation is the codec's responsibility.
type Options struct {
	Format           config.Format
	Quality          int // 1-100
	Effort           int // 1-10; the WebP cgo binding does not expose it
	MinimizeFileSize bool
	StripMetadata    bool
}

// OptionsFromConfig builds encode options from the process configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Format:           cfg.OutputFormat,
		Quality:          cfg.Quality,
		Effort:           cfg.Effort,
		MinimizeFileSize: cfg.MinimizeFileSize,
		StripMetadata:    cfg.StripMetadata,
	}
}

// Variant is one encoded output: the bytes plus what they are.
type Variant struct {
	Name   string // variant name; filled in by the caller
	Width  int    // actual output width in pixels
	Height int
	Format config.Format
	Data   []byte
}

// DecodeSource decodes the full source image into memory. The returned
// image is read-only and safe to share across concurrent encode workers.
func DecodeSource(src Source) (image.Image, error) {
	r, err := src.Open()
	if err != nil {
		return nil, errs.Decode("decode.open", err)
	}
	defer r.Close()

	img, format, err := image.Decode(r)
	if err != nil {
		return nil, errs.Decode("decode.read", fmt.Errorf("%w: %v", errs.ErrUnsupportedFormat, err))
	}

	log.Debug().
		Str("source", src.Name()).
		Str("format", format).
		Int("width", img.Bounds().Dx()).
		Int("height", img.Bounds().Dy()).
		Msg("Source image decoded")

	return img, nil
}

// Encode decodes the source and produces one re-encoded variant according
// to the policy. Prefer DecodeSource + EncodeImage when producing several
// variants of the same source.
func Encode(src Source, policy Policy, opts Options) (*Variant, error) {
	img, err := DecodeSource(src)
	if err != nil {
		return nil, err
	}
	return EncodeImage(img, policy, opts)
}

// EncodeImage resizes a decoded image per the policy and encodes it in the
// configured output format.
func EncodeImage(img image.Image, policy Policy, opts Options) (*Variant, error) {
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()

	outW := policy.targetWidth(srcW)
	outH := scaledHeight(srcW, srcH, outW)

	out := img
	if outW != srcW {
		resized := image.NewRGBA(image.Rect(0, 0, outW, outH))
		draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
		out = resized
	}

	var buf bytes.Buffer
	switch opts.Format {
	case config.FormatWebP:
		err := webp.Encode(&buf, out, &webp.Options{
			Quality:  float32(opts.Quality),
			Lossless: false,
		})
		if err != nil {
			return nil, errs.Encode("encode.webp", err)
		}
	case config.FormatJPEG:
		if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: opts.Quality}); err != nil {
			return nil, errs.Encode("encode.jpeg", err)
		}
	case config.FormatPNG:
		enc := png.Encoder{}
		if opts.MinimizeFileSize {
			enc.CompressionLevel = png.BestCompression
		}
		if err := enc.Encode(&buf, out); err != nil {
			return nil, errs.Encode("encode.png", err)
		}
	default:
		return nil, errs.Encode("encode.format",
			fmt.Errorf("%w: %q", errs.ErrUnsupportedFormat, opts.Format))
	}

	if buf.Len() == 0 {
		return nil, errs.Encode("encode.empty", errs.ErrEmptyInput)
	}

	log.Debug().
		Int("src_width", srcW).
		Int("src_height", srcH).
		Int("out_width", outW).
		Int("out_height", outH).
		Str("format", string(opts.Format)).
		Int("bytes", buf.Len()).
		Msg("Variant encoded")

	return &Variant{
		Width:  outW,
		Height: outH,
		Format: opts.Format,
		Data:   buf.Bytes(),
	}, nil
}

// scaledHeight computes the output height that preserves aspect ratio for a
// target width. Never returns less than 1.
func scaledHeight(srcW, srcH, outW int) int {
	if outW == srcW {
		return srcH
	}
	h := int(math.Round(float64(srcH) * float64(outW) / float64(srcW)))
	if h < 1 {
		h = 1
	}
	return h
}
