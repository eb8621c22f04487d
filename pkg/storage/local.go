package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalArchive implements Archive on the local filesystem. Each file is
// stored under its id with a JSON metadata sidecar.
type LocalArchive struct {
	basePath string
}

// NewLocalArchive creates the archive directory if needed.
func NewLocalArchive(basePath string) (*LocalArchive, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}
	return &LocalArchive{basePath: basePath}, nil
}

func (a *LocalArchive) dataPath(id uuid.UUID, name string) string {
	return filepath.Join(a.basePath, id.String()+filepath.Ext(name))
}

func (a *LocalArchive) metaPath(id uuid.UUID) string {
	return filepath.Join(a.basePath, id.String()+".meta.json")
}

// Store saves a source file and returns its metadata.
func (a *LocalArchive) Store(_ context.Context, filename string, r io.Reader) (*FileInfo, error) {
	id := uuid.New()
	path := a.dataPath(id, filename)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create archive file: %w", err)
	}
	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("write archive file: %w", err)
	}

	info := &FileInfo{
		ID:        id,
		Name:      filepath.Base(filename),
		Size:      size,
		Path:      path,
		CreatedAt: time.Now().UTC(),
	}
	meta, err := json.Marshal(info)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	if err := os.WriteFile(a.metaPath(id), meta, 0o644); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("write metadata: %w", err)
	}
	return info, nil
}

// Open retrieves an archived file by id.
func (a *LocalArchive) Open(ctx context.Context, fileID uuid.UUID) (io.ReadCloser, *FileInfo, error) {
	info, err := a.readMeta(fileID)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(info.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open archived file: %w", err)
	}
	return f, info, nil
}

// List returns all archived files, newest first.
func (a *LocalArchive) List(_ context.Context) ([]*FileInfo, error) {
	entries, err := os.ReadDir(a.basePath)
	if err != nil {
		return nil, fmt.Errorf("read archive directory: %w", err)
	}

	var infos []*FileInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".meta.json") {
			continue
		}
		idStr := strings.TrimSuffix(e.Name(), ".meta.json")
		id, err := uuid.Parse(idStr)
		if err != nil {
			continue
		}
		info, err := a.readMeta(id)
		if err != nil {
			continue
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.After(infos[j].CreatedAt)
	})
	return infos, nil
}

// Delete removes an archived file and its metadata.
func (a *LocalArchive) Delete(_ context.Context, fileID uuid.UUID) error {
	info, err := a.readMeta(fileID)
	if err != nil {
		return err
	}
	if err := os.Remove(info.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove archived file: %w", err)
	}
	if err := os.Remove(a.metaPath(fileID)); err != nil {
		return fmt.Errorf("remove metadata: %w", err)
	}
	return nil
}

func (a *LocalArchive) readMeta(id uuid.UUID) (*FileInfo, error) {
	data, err := os.ReadFile(a.metaPath(id))
	if err != nil {
		return nil, fmt.Errorf("archived file %s: %w", id, err)
	}
	var info FileInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("decode metadata for %s: %w", id, err)
	}
	return &info, nil
}
