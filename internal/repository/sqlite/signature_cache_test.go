package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSignatureCache(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache", "signatures.db")

	store, err := OpenSignatureCache(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	laptop := store.ForDevice("laptop")
	if _, ok, err := laptop.SavedSignature(ctx); err != nil || ok {
		t.Fatalf("fresh device = (%v, %v), want nothing saved", ok, err)
	}

	for _, img := range []string{"data:image/png;base64,ONE", "data:image/png;base64,TWO"} {
		if err := laptop.SaveSignature(ctx, img); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	img, ok, err := laptop.SavedSignature(ctx)
	if err != nil || !ok || img != "data:image/png;base64,TWO" {
		t.Fatalf("saved = (%q, %v, %v), want the latest image", img, ok, err)
	}

	if _, ok, _ := store.ForDevice("phone").SavedSignature(ctx); ok {
		t.Error("slots must be per device")
	}

	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := OpenSignatureCache(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if img, ok, _ := reopened.ForDevice("laptop").SavedSignature(ctx); !ok || img != "data:image/png;base64,TWO" {
		t.Errorf("cache did not survive reopen: (%q, %v)", img, ok)
	}
}

func TestSignatureCacheWithoutDevice(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSignatureCache(filepath.Join(t.TempDir(), "signatures.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	anon := store.ForDevice("")
	if err := anon.SaveSignature(ctx, "img"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, ok, _ := anon.SavedSignature(ctx); ok {
		t.Error("an unidentified device has no slot")
	}
}
