package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fpang/image-variants/internal/errs"
)

func TestNewLocal(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	if _, err := NewLocal(dir); err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("output directory not created: %v", err)
	}

	if _, err := NewLocal(""); err == nil {
		t.Error("NewLocal succeeded with empty dir, want error")
	}
}

func TestLocalPut(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewLocal(dir)
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}

	ref, err := backend.Put(context.Background(), "posts/sm_photo.webp",
		strings.NewReader("variant-bytes"), PutOptions{ContentType: "image/webp"})
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	want := filepath.Join(dir, "posts", "sm_photo.webp")
	if ref.URL != want {
		t.Errorf("URL = %q, want %q", ref.URL, want)
	}
	if ref.Key != "posts/sm_photo.webp" {
		t.Errorf("Key = %q", ref.Key)
	}

	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("output file missing: %v", err)
	}
	if string(data) != "variant-bytes" {
		t.Errorf("file content = %q", data)
	}
}

func TestLocalPutOverwrites(t *testing.T) {
	backend, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}

	ctx := context.Background()
	if _, err := backend.Put(ctx, "f.webp", strings.NewReader("first"), PutOptions{}); err != nil {
		t.Fatalf("first Put failed: %v", err)
	}
	ref, err := backend.Put(ctx, "f.webp", strings.NewReader("second"), PutOptions{})
	if err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	data, _ := os.ReadFile(ref.URL)
	if string(data) != "second" {
		t.Errorf("content = %q, want second", data)
	}
}

func TestLocalPutCanceledContext(t *testing.T) {
	backend, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = backend.Put(ctx, "f.webp", strings.NewReader("x"), PutOptions{})
	if err == nil {
		t.Fatal("Put succeeded with canceled context, want error")
	}
	if !errs.IsCategory(err, errs.CategoryStorage) {
		t.Errorf("error category = %v, want storage", err)
	}
}
