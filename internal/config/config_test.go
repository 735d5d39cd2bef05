package config

import (
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.OutputFormat != FormatWebP {
		t.Errorf("OutputFormat = %q, want %q", cfg.OutputFormat, FormatWebP)
	}
	if cfg.CacheMaxAge != 31536000 {
		t.Errorf("CacheMaxAge = %d, want 31536000", cfg.CacheMaxAge)
	}
	if cfg.Quality != 75 {
		t.Errorf("Quality = %d, want 75", cfg.Quality)
	}
	if cfg.Effort != 10 {
		t.Errorf("Effort = %d, want 10", cfg.Effort)
	}
	if !cfg.MinimizeFileSize {
		t.Error("MinimizeFileSize = false, want true")
	}
	if cfg.Bucket != "" {
		t.Errorf("Bucket = %q, want empty", cfg.Bucket)
	}

	want := []SizeEntry{
		{"xs", 320}, {"sm", 768}, {"md", 1024}, {"lg", 1280}, {"xl", 1536},
	}
	if len(cfg.Sizes) != len(want) {
		t.Fatalf("len(Sizes) = %d, want %d", len(cfg.Sizes), len(want))
	}
	for i, entry := range want {
		if cfg.Sizes[i] != entry {
			t.Errorf("Sizes[%d] = %+v, want %+v", i, cfg.Sizes[i], entry)
		}
	}
}

func TestParseSizes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []SizeEntry
		wantErr bool
	}{
		{
			name:  "two entries",
			input: "xs:320,sm:768",
			want:  []SizeEntry{{"xs", 320}, {"sm", 768}},
		},
		{
			name:  "whitespace tolerated",
			input: " xs : 320 , sm : 768 ",
			want:  []SizeEntry{{"xs", 320}, {"sm", 768}},
		},
		{
			name:  "trailing comma",
			input: "xs:320,",
			want:  []SizeEntry{{"xs", 320}},
		},
		{name: "missing width", input: "xs", wantErr: true},
		{name: "non-numeric width", input: "xs:wide", wantErr: true},
		{name: "zero width", input: "xs:0", wantErr: true},
		{name: "negative width", input: "xs:-5", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSizes(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseSizes(%q) succeeded, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSizes(%q) failed: %v", tt.input, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("entry %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "webp", want: FormatWebP},
		{input: "WEBP", want: FormatWebP},
		{input: "jpeg", want: FormatJPEG},
		{input: "jpg", want: FormatJPEG},
		{input: "png", want: FormatPNG},
		{input: "avif", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseFormat(%q) succeeded, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFormat(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatExtension(t *testing.T) {
	if got := FormatJPEG.Extension(); got != "jpg" {
		t.Errorf("jpeg extension = %q, want jpg", got)
	}
	if got := FormatWebP.Extension(); got != "webp" {
		t.Errorf("webp extension = %q, want webp", got)
	}
	if got := FormatWebP.ContentType(); got != "image/webp" {
		t.Errorf("webp content type = %q, want image/webp", got)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("IMGVAR_SIZES", "sm:640,lg:1920")
	t.Setenv("IMGVAR_OUTPUT_FORMAT", "jpeg")
	t.Setenv("IMGVAR_CACHE_MAX_AGE", "3600")
	t.Setenv("IMGVAR_QUALITY", "90")
	t.Setenv("IMGVAR_STRIP_METADATA", "false")
	t.Setenv("IMGVAR_BUCKET", "assets-bucket")
	t.Setenv("IMGVAR_ASSET_HOST", "https://cdn.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if len(cfg.Sizes) != 2 || cfg.Sizes[0] != (SizeEntry{"sm", 640}) || cfg.Sizes[1] != (SizeEntry{"lg", 1920}) {
		t.Errorf("Sizes = %+v, want [sm:640 lg:1920]", cfg.Sizes)
	}
	if cfg.OutputFormat != FormatJPEG {
		t.Errorf("OutputFormat = %q, want jpeg", cfg.OutputFormat)
	}
	if cfg.CacheMaxAge != 3600 {
		t.Errorf("CacheMaxAge = %d, want 3600", cfg.CacheMaxAge)
	}
	if cfg.Quality != 90 {
		t.Errorf("Quality = %d, want 90", cfg.Quality)
	}
	if cfg.StripMetadata {
		t.Error("StripMetadata = true, want false")
	}
	if cfg.Bucket != "assets-bucket" {
		t.Errorf("Bucket = %q, want assets-bucket", cfg.Bucket)
	}
	if cfg.AssetHost != "https://cdn.example.com" {
		t.Errorf("AssetHost = %q", cfg.AssetHost)
	}
}

func TestLoadRejectsMalformedEnv(t *testing.T) {
	t.Setenv("IMGVAR_CACHE_MAX_AGE", "forever")

	if _, err := Load(); err == nil {
		t.Fatal("Load() succeeded with malformed IMGVAR_CACHE_MAX_AGE, want error")
	}
}
