// Package cli holds argument validation helpers shared by the command-line
// tools. These exit fatally on bad input; library code never does.
package cli

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// ValidateAndResolvePath checks that the path exists, then returns the
// absolute path and whether it is a directory. Exits fatally on failure.
func ValidateAndResolvePath(path string) (string, bool) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Fatal().Str("path", path).Msg("Path not found")
		}
		log.Fatal().Err(err).Str("path", path).Msg("Failed to access path")
	}

	absPath, err := filepath.Abs(path)
	if err == nil {
		path = absPath
	}

	return path, info.IsDir()
}
