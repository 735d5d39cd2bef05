package uploader

import (
	"strconv"

	"github.com/fpang/image-variants/internal/storage"
)

// Reserved keys in the URL map.
const (
	// KeyDefault aliases the largest-width variant.
	KeyDefault = "default"
	// KeyThumbnail aliases the smallest-width variant.
	KeyThumbnail = "thumbnail"
)

// URLMap is the final output of an orchestrated upload: stringified widths
// mapped to public URLs, plus the "default" and "thumbnail" aliases. It is
// JSON-serializable as-is.
type URLMap map[string]string

// Uploaded pairs a catalog entry with the reference its upload returned.
type Uploaded struct {
	Name  string
	Width int
	Ref   storage.StoredObject
}

// AssembleURLMap builds the URL map from uploaded variant references.
// "default" aliases the maximum-width entry and "thumbnail" the minimum;
// with a single entry the two are equal. When several entries share the
// same width, the first in catalog order wins, for the width key and for
// both aliases.
func AssembleURLMap(items []Uploaded) URLMap {
	if len(items) == 0 {
		return URLMap{}
	}

	out := make(URLMap, len(items)+2)
	largest, smallest := items[0], items[0]
	for _, it := range items {
		key := strconv.Itoa(it.Width)
		if _, exists := out[key]; !exists {
			out[key] = it.Ref.URL
		}
		if it.Width > largest.Width {
			largest = it
		}
		if it.Width < smallest.Width {
			smallest = it
		}
	}
	out[KeyDefault] = largest.Ref.URL
	out[KeyThumbnail] = smallest.Ref.URL
	return out
}
