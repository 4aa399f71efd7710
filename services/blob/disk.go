package blobsvc

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

// DiskStore keeps blobs under a local directory. Meant for development and tests.
type DiskStore struct {
	dir       string
	publicURL string
}

var _ core.BlobStore = (*DiskStore)(nil)

func NewDiskStore(conf *core.Config) *DiskStore {
	return &DiskStore{dir: conf.Storage.LocalDir, publicURL: conf.Storage.PublicURL}
}

func (s *DiskStore) path(key string) (string, error) {
	fp := filepath.Join(s.dir, filepath.FromSlash(key))
	if !strings.HasPrefix(fp, filepath.Clean(s.dir)+string(os.PathSeparator)) {
		return "", errors.Errorf("invalid key %q", key)
	}
	return fp, nil
}

func (s *DiskStore) Put(_ context.Context, key string, blob core.Blob) (string, error) {
	fp, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err = os.MkdirAll(filepath.Dir(fp), 0o755); err != nil {
		return "", errors.Wrap(err, "creating blob dir")
	}
	f, err := os.Create(fp)
	if err != nil {
		return "", errors.Wrapf(err, "creating %s", key)
	}
	defer f.Close()
	if _, err = io.Copy(f, blob.Content); err != nil {
		return "", errors.Wrapf(err, "writing %s", key)
	}
	return publicURL(s.publicURL, key), nil
}

func (s *DiskStore) Delete(_ context.Context, key string) error {
	fp, err := s.path(key)
	if err != nil {
		return err
	}
	if err = os.Remove(fp); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "deleting %s", key)
	}
	return nil
}

func publicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
