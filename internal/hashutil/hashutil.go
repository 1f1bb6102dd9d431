// Package hashutil computes the chunk, directory, and fileset hashes the
// duplicate analyzer groups candidates by.
package hashutil

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"
)

// Digest is a hex-encoded MD5 digest, kept as a string so it can be used
// directly as a map key when grouping candidates.
type Digest string

// ChunkFile hashes the first limit bytes of path. A file shorter than limit
// is hashed in full. I/O errors are returned unwrapped so callers can
// demote the candidate to "unhashable" per §4.5's failure semantics.
func ChunkFile(path string, limit int) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.CopyN(h, f, int64(limit)); err != nil && err != io.EOF {
		return "", err
	}
	return Digest(hex.EncodeToString(h.Sum(nil))), nil
}

// ChildFile is the minimal shape DirectoryHash needs for a direct child file.
type ChildFile struct {
	Name string
	Hash Digest
}

// DirectoryHash computes the recursive directory digest from §4.5 Stage A:
// an MD5 running digest updated with the chunk hash of every direct child
// file (sorted by name) and recursively with the hash of every immediate
// subdirectory (also sorted by name). childDirHashes maps subdirectory name
// to its already-computed DirectoryHash result, since directories must be
// hashed bottom-up.
func DirectoryHash(files []ChildFile, childDirHashes map[string]Digest) Digest {
	sortedFiles := make([]ChildFile, len(files))
	copy(sortedFiles, files)
	sort.Slice(sortedFiles, func(i, j int) bool { return sortedFiles[i].Name < sortedFiles[j].Name })

	dirNames := make([]string, 0, len(childDirHashes))
	for name := range childDirHashes {
		dirNames = append(dirNames, name)
	}
	sort.Strings(dirNames)

	h := md5.New()
	for _, cf := range sortedFiles {
		io.WriteString(h, string(cf.Hash))
	}
	for _, name := range dirNames {
		io.WriteString(h, string(childDirHashes[name]))
	}
	return Digest(hex.EncodeToString(h.Sum(nil)))
}

// FilesetHash computes a fileset's combined hash: MD5 of the concatenation
// of its members' chunk hashes, in member order (§4.5 Stage B step 2).
func FilesetHash(memberHashes []Digest) Digest {
	h := md5.New()
	for _, d := range memberHashes {
		io.WriteString(h, string(d))
	}
	return Digest(hex.EncodeToString(h.Sum(nil)))
}

// ShapeKey is the cheap directory grouping signature from §4.5 Stage A:
// (intrinsicSize, totalSize, fileCount, linkCount, statSize).
type ShapeKey struct {
	IntrinsicSize int64
	TotalSize     int64
	FileCount     int
	LinkCount     uint64
	StatSize      int64
}

// String renders the shape key as a comparable map key.
func (k ShapeKey) String() string {
	return fmt.Sprintf("%d:%d:%d:%d:%d", k.IntrinsicSize, k.TotalSize, k.FileCount, k.LinkCount, k.StatSize)
}
