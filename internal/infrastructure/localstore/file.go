package localstore

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/usermgmt/admin-console/internal/core/ports"
)

const (
	fileMode  = 0o600
	nonceSize = 24
	keySize   = 32
	hkdfInfo  = "admin-console/localstore/v1"
)

// ErrSealed is returned when a sealed store cannot be opened with the
// configured secret.
var ErrSealed = errors.New("localstore: cannot open sealed store")

// File persists entries as a single JSON object so a session survives
// process restarts. When a secret is configured the document is sealed with
// NaCl secretbox under a key derived from the secret.
type File struct {
	mu   sync.Mutex
	path string
	key  *[keySize]byte
}

// FileOption configures a File store.
type FileOption func(*File) error

// WithSecret seals the file with a key derived from secret. An empty secret
// leaves the file in plain JSON.
func WithSecret(secret string) FileOption {
	return func(f *File) error {
		if secret == "" {
			return nil
		}
		var key [keySize]byte
		kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo))
		if _, err := io.ReadFull(kdf, key[:]); err != nil {
			return fmt.Errorf("localstore: derive key: %w", err)
		}
		f.key = &key
		return nil
	}
}

func NewFile(path string, opts ...FileOption) (*File, error) {
	f := &File{path: path}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	return f, nil
}

var _ ports.KeyValueStore = (*File)(nil)

func (f *File) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read()
	if err != nil {
		return "", err
	}
	v, ok := entries[key]
	if !ok {
		return "", ports.ErrKeyNotFound
	}
	return v, nil
}

func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read()
	if err != nil {
		return err
	}
	entries[key] = value
	return f.write(entries)
}

func (f *File) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	return f.write(entries)
}

// Ping checks that the document can be read back.
func (f *File) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, err := f.read()
	return err
}

func (f *File) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("localstore: read %s: %w", f.path, err)
	}

	if f.key != nil {
		if data, err = f.open(data); err != nil {
			return nil, err
		}
	}

	entries := make(map[string]string)
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("localstore: decode %s: %w", f.path, err)
	}
	return entries, nil
}

// write replaces the document atomically via a temp file and rename.
func (f *File) write(entries map[string]string) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("localstore: encode: %w", err)
	}
	if f.key != nil {
		if data, err = f.seal(data); err != nil {
			return err
		}
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("localstore: mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".localstore-*")
	if err != nil {
		return fmt.Errorf("localstore: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("localstore: write: %w", err)
	}
	if err := tmp.Chmod(fileMode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("localstore: chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("localstore: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("localstore: rename: %w", err)
	}
	return nil
}

func (f *File) seal(plain []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("localstore: nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], plain, &nonce, f.key), nil
}

func (f *File) open(sealed []byte) ([]byte, error) {
	if len(sealed) < nonceSize+secretbox.Overhead {
		return nil, ErrSealed
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, f.key)
	if !ok {
		return nil, ErrSealed
	}
	return plain, nil
}
