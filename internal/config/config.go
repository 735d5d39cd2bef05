// Package config holds the process-wide configuration for the variant
// pipeline. A Config is built once at startup (from the environment or a
// literal in tests) and passed into each component constructor; nothing in
// the module reads ambient global state after that.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fpang/image-variants/internal/errs"
)

// Format is an output image encoding.
type Format string

const (
	FormatWebP Format = "webp"
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
)

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string { return "image/" + string(f) }

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return string(f)
}

// SizeEntry is one configured variant: a name and a target pixel width.
type SizeEntry struct {
	Name  string
	Width int
}

// Defaults applied when the corresponding setting is absent.
const (
	DefaultOutputFormat = FormatWebP
	DefaultCacheMaxAge  = 31536000 // one year, in seconds
	DefaultQuality      = 75
	DefaultEffort       = 10
)

// DefaultSizes is the built-in size catalog used when none is configured.
var DefaultSizes = []SizeEntry{
	{Name: "xs", Width: 320},
	{Name: "sm", Width: 768},
	{Name: "md", Width: 1024},
	{Name: "lg", Width: 1280},
	{Name: "xl", Width: 1536},
}

// Config is the full configuration surface consumed by the pipeline.
type Config struct {
	// Sizes is the ordered variant catalog. Empty means DefaultSizes.
	Sizes []SizeEntry

	// OutputFormat is the encoding for every produced variant.
	OutputFormat Format

	// CacheMaxAge is the max-age value (seconds) for the Cache-Control
	// header attached to uploaded variants.
	CacheMaxAge int

	// Encoder settings, passed through to the codec.
	Quality          int // 1-100
	Effort           int // 1-10; honored only by codecs that expose it
	MinimizeFileSize bool
	StripMetadata    bool

	// Bucket is the destination bucket for uploads. Required for the
	// upload path; there is no default.
	Bucket string

	// AssetHost, when set, overrides public URL construction:
	// "{AssetHost}/{key}" instead of "{scheme}{host}/{bucket}/{key}".
	AssetHost string
}

// Default returns a Config populated with all defaults and no bucket.
func Default() *Config {
	return &Config{
		Sizes:            append([]SizeEntry(nil), DefaultSizes...),
		OutputFormat:     DefaultOutputFormat,
		CacheMaxAge:      DefaultCacheMaxAge,
		Quality:          DefaultQuality,
		Effort:           DefaultEffort,
		MinimizeFileSize: true,
		StripMetadata:    true,
	}
}

// Load builds a Config from IMGVAR_* environment variables on top of the
// defaults. Malformed values are a config error; absent values fall back.
//
//	IMGVAR_SIZES          e.g. "xs:320,sm:768,md:1024"
//	IMGVAR_OUTPUT_FORMAT  webp | jpeg | png
//	IMGVAR_CACHE_MAX_AGE  seconds
//	IMGVAR_QUALITY        1-100
//	IMGVAR_EFFORT         1-10
//	IMGVAR_MINIMIZE       true | false
//	IMGVAR_STRIP_METADATA true | false
//	IMGVAR_BUCKET         destination bucket (required for uploads)
//	IMGVAR_ASSET_HOST     public URL override host
func Load() (*Config, error) {
	cfg := Default()

	if v := os.Getenv("IMGVAR_SIZES"); v != "" {
		sizes, err := ParseSizes(v)
		if err != nil {
			return nil, err
		}
		cfg.Sizes = sizes
	}
	if v := os.Getenv("IMGVAR_OUTPUT_FORMAT"); v != "" {
		f, err := ParseFormat(v)
		if err != nil {
			return nil, err
		}
		cfg.OutputFormat = f
	}
	if v := os.Getenv("IMGVAR_CACHE_MAX_AGE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, errs.Config("config.load", fmt.Sprintf("invalid IMGVAR_CACHE_MAX_AGE %q", v))
		}
		cfg.CacheMaxAge = n
	}
	if v := os.Getenv("IMGVAR_QUALITY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, errs.Config("config.load", fmt.Sprintf("invalid IMGVAR_QUALITY %q", v))
		}
		cfg.Quality = n
	}
	if v := os.Getenv("IMGVAR_EFFORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, errs.Config("config.load", fmt.Sprintf("invalid IMGVAR_EFFORT %q", v))
		}
		cfg.Effort = n
	}
	if v := os.Getenv("IMGVAR_MINIMIZE"); v != "" {
		cfg.MinimizeFileSize = v == "true" || v == "1"
	}
	if v := os.Getenv("IMGVAR_STRIP_METADATA"); v != "" {
		cfg.StripMetadata = v == "true" || v == "1"
	}
	cfg.Bucket = os.Getenv("IMGVAR_BUCKET")
	cfg.AssetHost = os.Getenv("IMGVAR_ASSET_HOST")

	return cfg, nil
}

// ParseFormat converts a string into a supported output Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "webp":
		return FormatWebP, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	default:
		return "", errs.Config("config.format", fmt.Sprintf("unsupported output format %q", s))
	}
}

// ParseSizes parses an ordered "name:width,name:width" catalog string.
func ParseSizes(s string) ([]SizeEntry, error) {
	var out []SizeEntry
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, widthStr, ok := strings.Cut(part, ":")
		if !ok {
			return nil, errs.Config("config.sizes", fmt.Sprintf("malformed size entry %q (want name:width)", part))
		}
		width, err := strconv.Atoi(strings.TrimSpace(widthStr))
		if err != nil || width <= 0 {
			return nil, errs.Config("config.sizes", fmt.Sprintf("invalid width in size entry %q", part))
		}
		out = append(out, SizeEntry{Name: strings.TrimSpace(name), Width: width})
	}
	if len(out) == 0 {
		return nil, errs.Config("config.sizes", "size catalog must not be empty")
	}
	return out, nil
}
