package hashutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestChunkFileIdenticalContentSameHash(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.jpg")
	b := filepath.Join(dir, "b.jpg")
	if err := os.WriteFile(a, []byte("identical content"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte("identical content"), 0o644); err != nil {
		t.Fatal(err)
	}

	ha, err := ChunkFile(a, 131072)
	if err != nil {
		t.Fatal(err)
	}
	hb, err := ChunkFile(b, 131072)
	if err != nil {
		t.Fatal(err)
	}
	if ha != hb {
		t.Fatalf("expected identical hashes, got %s vs %s", ha, hb)
	}
}

func TestChunkFileOnlyReadsLimitBytes(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.bin")
	b := filepath.Join(dir, "b.bin")
	os.WriteFile(a, []byte("0123456789AAAA"), 0o644)
	os.WriteFile(b, []byte("0123456789BBBB"), 0o644)

	ha, _ := ChunkFile(a, 10)
	hb, _ := ChunkFile(b, 10)
	if ha != hb {
		t.Fatalf("expected hashes over shared first 10 bytes to match, got %s vs %s", ha, hb)
	}
}

func TestChunkFileMissingFileErrors(t *testing.T) {
	if _, err := ChunkFile("/nonexistent/path", 10); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDirectoryHashIsOrderIndependent(t *testing.T) {
	files1 := []ChildFile{{Name: "b.jpg", Hash: "hb"}, {Name: "a.jpg", Hash: "ha"}}
	files2 := []ChildFile{{Name: "a.jpg", Hash: "ha"}, {Name: "b.jpg", Hash: "hb"}}

	h1 := DirectoryHash(files1, nil)
	h2 := DirectoryHash(files2, nil)
	if h1 != h2 {
		t.Fatalf("expected order-independent hash, got %s vs %s", h1, h2)
	}
}

func TestDirectoryHashIncludesSubdirectories(t *testing.T) {
	files := []ChildFile{{Name: "a.jpg", Hash: "ha"}}
	h1 := DirectoryHash(files, nil)
	h2 := DirectoryHash(files, map[string]Digest{"sub": "subhash"})
	if h1 == h2 {
		t.Fatal("expected subdirectory contribution to change the hash")
	}
}

func TestFilesetHashIsOrderDependent(t *testing.T) {
	h1 := FilesetHash([]Digest{"a", "b"})
	h2 := FilesetHash([]Digest{"b", "a"})
	if h1 == h2 {
		t.Fatal("expected fileset hash to depend on member order")
	}
}

func TestShapeKeyStringDiffersOnAnyField(t *testing.T) {
	k1 := ShapeKey{IntrinsicSize: 10, TotalSize: 10, FileCount: 1, LinkCount: 1, StatSize: 10}
	k2 := ShapeKey{IntrinsicSize: 10, TotalSize: 10, FileCount: 2, LinkCount: 1, StatSize: 10}
	if k1.String() == k2.String() {
		t.Fatal("expected different shape keys to produce different strings")
	}
}
