package local

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestFilesMatchesExtensionSorted(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.nrb", "2|x\n")
	writeFile(t, dir, "a.nrb", "1|x\n")
	writeFile(t, dir, "notes.txt", "ignore me\n")
	writeFile(t, dir, "c.nrb.bak", "ignore me too\n")

	src := New(dir, ".nrb")
	files, err := src.Files(context.Background())
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2", len(files))
	}
	if files[0].Name() != "a.nrb" || files[1].Name() != "b.nrb" {
		t.Errorf("order: %s, %s", files[0].Name(), files[1].Name())
	}

	rc, err := files[0].Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "1|x\n" {
		t.Errorf("content: %q", b)
	}
}

func TestExtensionNormalized(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.nrb", "1|x\n")

	for _, ext := range []string{"", ".nrb", "nrb"} {
		src := New(dir, ext)
		files, err := src.Files(context.Background())
		if err != nil {
			t.Fatalf("ext %q: %v", ext, err)
		}
		if len(files) != 1 {
			t.Errorf("ext %q: got %d files, want 1", ext, len(files))
		}
	}
}

func TestMissingDirectoryErrors(t *testing.T) {
	src := New(filepath.Join(t.TempDir(), "does-not-exist"), ".nrb")
	if _, err := src.Files(context.Background()); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestEmptyDirectoryYieldsNoFiles(t *testing.T) {
	src := New(t.TempDir(), ".nrb")
	files, err := src.Files(context.Background())
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("got %d files, want 0", len(files))
	}
}
