package local

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"padhaihub-backend/internal/shared/storage/object"
)

func TestSaveAndOpen(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)

	obj, err := store.Save(context.Background(), "guest:g1", "essay.txt", "", strings.NewReader("My essay about rivers"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if obj.Size != int64(len("My essay about rivers")) {
		t.Fatalf("unexpected size %d", obj.Size)
	}
	if !strings.HasPrefix(obj.MimeType, "text/plain") {
		t.Fatalf("expected sniffed text/plain, got %q", obj.MimeType)
	}
	if !strings.HasPrefix(obj.Key, "uploads/"+object.OwnerKey("guest:g1")+"/") {
		t.Fatalf("unexpected key %q", obj.Key)
	}
	if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(obj.Key))); err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}

	rc, err := store.Open(context.Background(), obj.Key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "My essay about rivers" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestSaveKeepsDeclaredType(t *testing.T) {
	store := New(t.TempDir())
	obj, err := store.Save(context.Background(), "u", "a.pdf", "application/pdf", strings.NewReader("not really"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if obj.MimeType != "application/pdf" {
		t.Fatalf("expected declared type, got %q", obj.MimeType)
	}
}

func TestSaveWithKeyRejectsTraversal(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.SaveWithKey(context.Background(), "../escape.txt", "text/plain", strings.NewReader("x")); !errors.Is(err, object.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
	if _, err := store.Open(context.Background(), "/etc/passwd"); !errors.Is(err, object.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestSaveHonoursCancelledContext(t *testing.T) {
	store := New(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Save(ctx, "u", "a.txt", "", strings.NewReader("x")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
