package cachemgr

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/gob"
	"encoding/hex"
	"io"
	"os"
	"path"
	"strings"

	"github.com/klauspost/compress/zlib"
	"github.com/viant/afs/storage"
)

// afsService is the narrow slice of github.com/viant/afs's Service interface
// the cold tier needs; declared locally so tests can substitute an in-memory
// fake without depending on a live afs backend.
type afsService interface {
	Upload(ctx context.Context, URL string, mode os.FileMode, reader io.Reader, options ...storage.Option) error
	DownloadWithURL(ctx context.Context, URL string, options ...storage.Option) ([]byte, error)
	Exists(ctx context.Context, URL string, options ...storage.Option) (bool, error)
	Delete(ctx context.Context, URL string, options ...storage.Option) error
}

func init() {
	// gob requires the concrete type behind an interface{} value to be
	// registered before it can be encoded or decoded; the cold tier stores
	// arbitrary cached values, so register the primitive shapes it most
	// commonly holds. Callers persisting their own struct types must
	// gob.Register them before first use.
	gob.Register("")
	gob.Register([]byte(nil))
	gob.Register(0)
	gob.Register(0.0)
	gob.Register(false)
}

// compMarker prefixes a cold-tier blob that has been deflated, so a reader
// can tell a compressed entry from a legacy/raw one without a side table.
var compMarker = []byte("COMP")

// coldTier persists cache entries to disk (or any afs-backed location) keyed
// by the MD5 hash of their logical key, gob-encoding the value and
// optionally deflating it.
type coldTier struct {
	fs       afsService
	dir      string
	compress bool
}

func newColdTier(fs afsService, dir string, compress bool) *coldTier {
	return &coldTier{fs: fs, dir: dir, compress: compress}
}

func (c *coldTier) pathFor(key string) string {
	sum := md5.Sum([]byte(key))
	return path.Join(c.dir, hex.EncodeToString(sum[:])+".cache")
}

func (c *coldTier) get(ctx context.Context, key string) (interface{}, bool) {
	url := c.pathFor(key)
	exists, err := c.fs.Exists(ctx, url)
	if err != nil || !exists {
		return nil, false
	}
	raw, err := c.fs.DownloadWithURL(ctx, url)
	if err != nil {
		return nil, false
	}

	payload := raw
	if bytes.HasPrefix(raw, compMarker) {
		inflated, err := inflateBlob(raw[len(compMarker):])
		if err != nil {
			// Corrupt compressed entry: self-heal by discarding it rather
			// than surfacing a cache-layer error to callers.
			_ = c.fs.Delete(ctx, url)
			return nil, false
		}
		payload = inflated
	}

	var v interface{}
	dec := gob.NewDecoder(bytes.NewReader(payload))
	if err := dec.Decode(&v); err != nil {
		_ = c.fs.Delete(ctx, url)
		return nil, false
	}
	return v, true
}

func (c *coldTier) set(ctx context.Context, key string, value interface{}) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(&value); err != nil {
		return
	}

	payload := buf.Bytes()
	if c.compress {
		deflated, err := deflateBlob(payload)
		if err == nil {
			payload = append(append([]byte{}, compMarker...), deflated...)
		}
	}

	_ = c.fs.Upload(ctx, c.pathFor(key), 0o644, bytes.NewReader(payload))
}

func (c *coldTier) delete(ctx context.Context, key string) {
	_ = c.fs.Delete(ctx, c.pathFor(key))
}

func deflateBlob(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func inflateBlob(compressed []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// isCacheFile reports whether name looks like a cold-tier entry filename,
// used by eviction sweeps to avoid touching unrelated files in dir.
func isCacheFile(name string) bool {
	return strings.HasSuffix(name, ".cache")
}
