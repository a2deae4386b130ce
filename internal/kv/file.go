package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// File is a Store persisted as one JSON object on disk. Every write rewrites
// the file through a temp file and rename.
type File struct {
	path string
	mu   sync.Mutex
	mem  *Memory
}

// OpenFile loads path if it exists; a missing file starts empty.
func OpenFile(path string) (*File, error) {
	f := &File{path: path, mem: NewMemory()}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read kv file: %w", err)
	}
	var raw map[string]json.RawMessage
	if len(b) > 0 {
		if err := json.Unmarshal(b, &raw); err != nil {
			return nil, fmt.Errorf("parse kv file %s: %w", path, err)
		}
	}
	for k, v := range raw {
		f.mem.data[k] = []byte(v)
	}
	return f, nil
}

func (f *File) Get(ctx context.Context, key string) ([]byte, error) {
	return f.mem.Get(ctx, key)
}

func (f *File) List(ctx context.Context, prefix string) (map[string][]byte, error) {
	return f.mem.List(ctx, prefix)
}

func (f *File) Set(ctx context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("kv file store only holds json values: %s", key)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mem.Set(ctx, key, value); err != nil {
		return err
	}
	return f.flush()
}

func (f *File) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mem.Delete(ctx, key); err != nil {
		return err
	}
	return f.flush()
}

func (f *File) flush() error {
	data := f.mem.snapshot()
	raw := make(map[string]json.RawMessage, len(data))
	for k, v := range data {
		raw[k] = v
	}
	b, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create kv dir: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write kv file: %w", err)
	}
	return os.Rename(tmp, f.path)
}
