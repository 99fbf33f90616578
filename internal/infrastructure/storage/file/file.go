// Package file persists storage keys in a single JSON document on disk.
//
// Every write replaces the whole document through a temp file and rename, so
// a multi-key Put is never observed half applied. When a secret is configured
// the document is sealed with NaCl secretbox under a key derived by scrypt.
package file

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"

	"github.com/carrental/storefront/internal/core/ports"
)

var _ ports.Storage = (*Store)(nil)

const (
	sealedMagic = "SFS1"
	saltSize    = 16
	nonceSize   = 24
	keySize     = 32
)

var (
	ErrCorrupt = errors.New("file storage: corrupt document")
	ErrSealed  = errors.New("file storage: document is sealed, secret required")
	ErrOpen    = errors.New("file storage: cannot unseal document, wrong secret")
)

type Config struct {
	Path string
	// Secret enables sealing when non-empty.
	Secret string
}

type Store struct {
	mu     sync.Mutex
	path   string
	secret []byte

	// salt and key are derived once and reused for the document's lifetime.
	salt []byte
	key  *[keySize]byte
}

// Open validates that the document, if present, can be read with the given
// secret.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("file storage: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o700); err != nil {
		return nil, fmt.Errorf("file storage: create directory: %w", err)
	}
	s := &Store{path: cfg.Path}
	if cfg.Secret != "" {
		s.secret = []byte(cfg.Secret)
	}
	if _, err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (s *Store) Put(_ context.Context, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.load()
	if err != nil {
		return err
	}
	for k, v := range values {
		current[k] = v
	}
	return s.save(current)
}

func (s *Store) Remove(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.load()
	if err != nil {
		return err
	}
	changed := false
	for _, k := range keys {
		if _, ok := current[k]; ok {
			delete(current, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.save(current)
}

func (s *Store) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.load()
	return err
}

func (s *Store) Close() error { return nil }

func (s *Store) load() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file storage: read: %w", err)
	}
	if len(raw) == 0 {
		return map[string]string{}, nil
	}

	if len(raw) >= len(sealedMagic) && string(raw[:len(sealedMagic)]) == sealedMagic {
		if s.secret == nil {
			return nil, ErrSealed
		}
		if raw, err = s.open(raw[len(sealedMagic):]); err != nil {
			return nil, err
		}
	}

	values := map[string]string{}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return values, nil
}

func (s *Store) save(values map[string]string) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("file storage: encode: %w", err)
	}
	if s.secret != nil {
		sealed, err := s.seal(data)
		if err != nil {
			return err
		}
		data = append([]byte(sealedMagic), sealed...)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".storage-*")
	if err != nil {
		return fmt.Errorf("file storage: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("file storage: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("file storage: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file storage: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("file storage: rename: %w", err)
	}
	return nil
}

// Sealed layout: salt(16) | nonce(24) | secretbox(payload).
func (s *Store) seal(plain []byte) ([]byte, error) {
	salt := s.salt
	if salt == nil {
		salt = make([]byte, saltSize)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return nil, fmt.Errorf("file storage: salt: %w", err)
		}
	}
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("file storage: nonce: %w", err)
	}
	key, err := s.deriveKey(salt)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, saltSize+nonceSize+len(plain)+secretbox.Overhead)
	out = append(out, salt...)
	out = append(out, nonce[:]...)
	return secretbox.Seal(out, plain, &nonce, key), nil
}

func (s *Store) open(sealed []byte) ([]byte, error) {
	if len(sealed) < saltSize+nonceSize+secretbox.Overhead {
		return nil, ErrCorrupt
	}
	salt := sealed[:saltSize]
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[saltSize:saltSize+nonceSize])
	key, err := s.deriveKey(salt)
	if err != nil {
		return nil, err
	}
	plain, ok := secretbox.Open(nil, sealed[saltSize+nonceSize:], &nonce, key)
	if !ok {
		return nil, ErrOpen
	}
	return plain, nil
}

func (s *Store) deriveKey(salt []byte) (*[keySize]byte, error) {
	if s.key != nil && bytes.Equal(s.salt, salt) {
		return s.key, nil
	}
	k, err := scrypt.Key(s.secret, salt, 1<<15, 8, 1, keySize)
	if err != nil {
		return nil, fmt.Errorf("file storage: derive key: %w", err)
	}
	var key [keySize]byte
	copy(key[:], k)
	s.salt = append([]byte(nil), salt...)
	s.key = &key
	return &key, nil
}
