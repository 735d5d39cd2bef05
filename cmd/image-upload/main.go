// Command image-upload renders the full variant set of one image and
// uploads it to object storage, printing the resulting URL map as JSON.
//
// The destination bucket comes from IMGVAR_BUCKET and is required; AWS
// credentials come from the default SDK chain.
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
	prefixFlag    string
	regionFlag    string
	overwriteFlag bool
)

// rootCmd is the main Cobra command for the image-upload CLI.
var rootCmd = &cobra.Command{
	Use:   "image-upload <image>",
	Short: "Upload all size variants of an image to object storage",
	Long: `image-upload encodes every configured size variant of an image and
uploads the set to the configured S3 bucket, then prints the variant URL
map (width keys plus "default" and "thumbnail") as JSON.

The upload is all-or-nothing: if any variant fails, the command exits
non-zero and no URL map is printed.

Examples:
  IMGVAR_BUCKET=my-assets image-upload photo.jpg
  image-upload photo.jpg --prefix posts/2026
  image-upload photo.jpg --overwrite   # deterministic names, replaces old objects`,
	Args: cobra.ExactArgs(1),
	Run:  runMain,
}

func init() {
	rootCmd.Flags().StringVar(&prefixFlag, "prefix", "", "Destination key prefix inside the bucket")
	rootCmd.Flags().StringVar(&regionFlag, "region", "", "AWS region override")
	rootCmd.Flags().BoolVar(&overwriteFlag, "overwrite", false, "Use deterministic names so re-uploads replace existing objects")
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

	path, isDir := imgcli.ValidateAndResolvePath(args[0])
	if isDir {
		log.Fatal().Str("path", path).Msg("Expected an image file, got a directory")
	}
	if !encoder.IsSupported(filepath.Ext(path)) {
		log.Fatal().Str("path", path).Msg("Unsupported file extension")
	}

	ctx := context.Background()
	backend, err := storage.NewS3FromEnv(ctx, storage.S3Config{
		Bucket:    cfg.Bucket,
		Region:    regionFlag,
		AssetHost: cfg.AssetHost,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build storage backend")
	}

	var opts []uploader.Option
	if overwriteFlag {
		opts = append(opts, uploader.WithDeterministicNames())
	}
	orch, err := uploader.New(cfg, backend, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build variant pipeline")
	}

	urls, err := orch.UploadSet(ctx, encoder.SourceFromFile(path), prefixFlag)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Upload failed")
	}

	data, err := json.MarshalIndent(urls, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal result")
	}
	fmt.Println(string(data))

	log.Info().
		Str("path", path).
		Int("variants", orch.Catalog().Len()).
		Str("default", urls[uploader.KeyDefault]).
		Msg("Variant set uploaded")
}
