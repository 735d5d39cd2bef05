package encoder

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/evanoberholster/imagemeta"
	"github.com/rs/zerolog/log"
)

// SourceMetadata is the subset of EXIF data the pipeline can forward to
// storage as object user metadata. Re-encoding always drops embedded EXIF
// from the output bytes, so this is the only metadata that survives when
// stripping is disabled.
type SourceMetadata struct {
	DateTaken   string // RFC 3339, "" when absent
	CameraMake  string
	CameraModel string
	HasGPS      bool
}

// AsObjectMetadata renders the metadata as storage user-metadata pairs.
// Empty fields are omitted.
func (m *SourceMetadata) AsObjectMetadata() map[string]string {
	out := make(map[string]string, 4)
	if m.DateTaken != "" {
		out["date-taken"] = m.DateTaken
	}
	if m.CameraMake != "" {
		out["camera-make"] = m.CameraMake
	}
	if m.CameraModel != "" {
		out["camera-model"] = m.CameraModel
	}
	if m.HasGPS {
		out["has-gps"] = "true"
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ExtractMetadata reads EXIF metadata from the source using the imagemeta
// library. Sources without EXIF (PNG, GIF, stripped files) yield an empty
// SourceMetadata rather than an error; only I/O failures are surfaced.
func ExtractMetadata(src Source) (*SourceMetadata, error) {
	var r io.ReadSeeker
	if src.Path != "" {
		f, err := os.Open(src.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open source for metadata: %w", err)
		}
		defer f.Close()
		r = f
	} else {
		r = bytes.NewReader(src.Data)
	}

	exifData, err := imagemeta.Decode(r)
	if err != nil {
		// No parseable EXIF block is the common case for PNG/GIF/WebP.
		log.Debug().Err(err).Str("source", src.Name()).Msg("No EXIF metadata in source")
		return &SourceMetadata{}, nil
	}

	meta := &SourceMetadata{
		CameraMake:  strings.TrimSpace(exifData.Make),
		CameraModel: strings.TrimSpace(exifData.Model),
	}

	// Date fallback chain: DateTimeOriginal > CreateDate > ModifyDate.
	switch {
	case !exifData.DateTimeOriginal().IsZero():
		meta.DateTaken = exifData.DateTimeOriginal().Format(time.RFC3339)
	case !exifData.CreateDate().IsZero():
		meta.DateTaken = exifData.CreateDate().Format(time.RFC3339)
	case !exifData.ModifyDate().IsZero():
		meta.DateTaken = exifData.ModifyDate().Format(time.RFC3339)
	}

	gps := exifData.GPS
	if gps.Latitude() != 0 || gps.Longitude() != 0 {
		meta.HasGPS = true
	}

	return meta, nil
}
