// Package docpath parses document store paths and generates push ids.
package docpath

import (
	"fmt"
	"strings"

	"github.com/bantuankita/bantuankita/domain/model"
)

// Split breaks a slash-separated path into its segments, ignoring empty ones.
// Segments may not contain characters the realtime database forbids in keys.
func Split(path string) ([]string, error) {
	raw := strings.Split(path, "/")
	segments := make([]string, 0, len(raw))
	for _, s := range raw {
		if s == "" {
			continue
		}
		if strings.ContainsAny(s, ".#$[]") {
			return nil, fmt.Errorf("%w: %q", model.ErrUnsupportedPath, path)
		}
		segments = append(segments, s)
	}
	return segments, nil
}

func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

// Location is a path resolved against a two-level collection layout
type Location struct {
	Collection string
	Key        string   // empty when the path names the whole collection
	Field      []string // remaining segments below the record
}

// Resolve maps path onto collection, record key and optional sub-field.
// The root path is not addressable on collection-based engines.
func Resolve(path string) (Location, error) {
	segments, err := Split(path)
	if err != nil {
		return Location{}, err
	}
	switch len(segments) {
	case 0:
		return Location{}, fmt.Errorf("%w: root path", model.ErrUnsupportedPath)
	case 1:
		return Location{Collection: segments[0]}, nil
	case 2:
		return Location{Collection: segments[0], Key: segments[1]}, nil
	default:
		return Location{Collection: segments[0], Key: segments[1], Field: segments[2:]}, nil
	}
}
