// Command image-variants resizes and re-encodes images on local disk: one
// output file per configured size variant, named "{variant}_{base}.{ext}".
// It accepts a single image or a directory; in directory mode, a file that
// fails is logged and the batch continues.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	imgcli "github.com/fpang/image-variants/internal/cli"
	"github.com/fpang/image-variants/internal/config"
	"github.com/fpang/image-variants/internal/encoder"
	"github.com/fpang/image-variants/internal/logging"
	"github.com/fpang/image-variants/internal/storage"
	"github.com/fpang/image-variants/internal/uploader"
)

// CLI flags
var (
	outFlag     string
	sizesFlag   string
	formatFlag  string
	qualityFlag int
	effortFlag  int
	limitFlag   int
)

// rootCmd is the main Cobra command for the image-variants CLI.
var rootCmd = &cobra.Command{
	Use:   "image-variants <image-or-directory>",
	Short: "Generate resized image variants on local disk",
	Long: `image-variants renders every configured size variant of an image
(or of every image in a directory) into an output directory.

Sizes, output format and encoder settings come from IMGVAR_* environment
variables and can be overridden per run with flags.

Examples:
  image-variants photo.jpg --out ./variants
  image-variants ./photos --out ./variants --limit 50
  image-variants photo.png -o ./out --sizes "sm:640,lg:1920" --format jpeg
  image-variants photo.jpg -o ./out --quality 90`,
	Args: cobra.ExactArgs(1),
	Run:  runMain,
}

func init() {
	rootCmd.Flags().StringVarP(&outFlag, "out", "o", "", "Output directory for generated variants (required)")
	rootCmd.Flags().StringVar(&sizesFlag, "sizes", "", `Size catalog override, e.g. "xs:320,sm:768"`)
	rootCmd.Flags().StringVar(&formatFlag, "format", "", "Output format override: webp, jpeg or png")
	rootCmd.Flags().IntVar(&qualityFlag, "quality", 0, "Encode quality override (1-100)")
	rootCmd.Flags().IntVar(&effortFlag, "effort", 0, "Encode effort override (1-10)")
	rootCmd.Flags().IntVar(&limitFlag, "limit", 0, "Maximum images to process in directory mode (0 = unlimited)")
	rootCmd.MarkFlagRequired("out")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runMain is the main execution logic called by Cobra.
func runMain(cmd *cobra.Command, args []string) {
	logging.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	applyOverrides(cfg)

	path, isDir := imgcli.ValidateAndResolvePath(args[0])

	backend, err := storage.NewLocal(outFlag)
	if err != nil {
		log.Fatal().Err(err).Str("out", outFlag).Msg("Failed to prepare output directory")
	}

	// Local output uses deterministic names so re-runs overwrite rather
	// than accumulate.
	orch, err := uploader.New(cfg, backend, uploader.WithDeterministicNames())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build variant pipeline")
	}

	ctx := context.Background()
	if isDir {
		runDirectory(ctx, orch, path)
		return
	}
	runSingle(ctx, orch, path)
}

// applyOverrides folds CLI flags into the loaded configuration.
func applyOverrides(cfg *config.Config) {
	if sizesFlag != "" {
		sizes, err := config.ParseSizes(sizesFlag)
		if err != nil {
			log.Fatal().Err(err).Str("sizes", sizesFlag).Msg("Invalid --sizes")
		}
		cfg.Sizes = sizes
	}
	if formatFlag != "" {
		format, err := config.ParseFormat(formatFlag)
		if err != nil {
			log.Fatal().Err(err).Str("format", formatFlag).Msg("Invalid --format")
		}
		cfg.OutputFormat = format
	}
	if qualityFlag > 0 {
		cfg.Quality = qualityFlag
	}
	if effortFlag > 0 {
		cfg.Effort = effortFlag
	}
}

// runSingle processes one image. An unsupported extension is fatal here;
// in directory mode the same condition only skips the file.
func runSingle(ctx context.Context, orch *uploader.Orchestrator, path string) {
	if !encoder.IsSupported(filepath.Ext(path)) {
		log.Fatal().Str("path", path).Msg("Unsupported file extension")
	}

	urls, err := orch.UploadSet(ctx, encoder.SourceFromFile(path), "")
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to generate variants")
	}

	printJSON(urls)
	log.Info().Str("path", path).Int("variants", orch.Catalog().Len()).Msg("Variants written")
}

// runDirectory processes every supported image under dirPath. Individual
// failures are logged and the batch continues.
func runDirectory(ctx context.Context, orch *uploader.Orchestrator, dirPath string) {
	files, err := encoder.ScanDirectory(dirPath, encoder.ScanOptions{Limit: limitFlag})
	if err != nil {
		log.Fatal().Err(err).Str("path", dirPath).Msg("Failed to scan directory")
	}
	if len(files) == 0 {
		log.Fatal().Str("path", dirPath).Msg("No supported images found in directory")
	}

	results := make(map[string]uploader.URLMap, len(files))
	failed := 0
	for _, file := range files {
		urls, err := orch.UploadSet(ctx, encoder.SourceFromFile(file), "")
		if err != nil {
			log.Warn().Err(err).Str("path", file).Msg("Skipping image")
			failed++
			continue
		}
		results[filepath.Base(file)] = urls
	}

	printJSON(results)
	log.Info().
		Int("processed", len(results)).
		Int("failed", failed).
		Msg("Directory batch complete")
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal result")
	}
	fmt.Println(string(data))
}
