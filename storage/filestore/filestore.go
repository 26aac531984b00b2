// Package filestore keeps session values in a single JSON file. When a passphrase
// is configured the file is sealed with XChaCha20-Poly1305 under an Argon2id key.
package filestore

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	apperrors "github.com/jrsteele09/go-subscription-client/internal/errors"
	"github.com/jrsteele09/go-subscription-client/storage"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

var _ storage.Store = (*Store)(nil)

var sealedMagic = []byte("SFENC1")

const saltLength = 16

// Store is safe for concurrent use within one process. Writes replace the file
// atomically, so other processes see either the old or the new contents.
type Store struct {
	path       string
	passphrase string

	mu      sync.Mutex
	salt    []byte
	keyBase []byte
}

// New returns a store writing to path. The parent directory is created on first write.
func New(path, passphrase string) *Store {
	return &Store{path: path, passphrase: passphrase}
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return v, nil
}

func (s *Store) Put(values map[string]string) error {
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

func (s *Store) Delete(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load()
	if err != nil {
		return err
	}
	for _, k := range keys {
		delete(current, k)
	}
	return s.save(current)
}

func (s *Store) load() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("filestore read %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]string{}, nil
	}

	if bytes.HasPrefix(raw, sealedMagic) {
		if raw, err = s.open(raw[len(sealedMagic):]); err != nil {
			return nil, err
		}
	}

	values := map[string]string{}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("filestore decode %s: %w", s.path, err)
	}
	return values, nil
}

func (s *Store) save(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("filestore encode: %w", err)
	}
	if s.passphrase != "" {
		sealed, err := s.seal(data)
		if err != nil {
			return err
		}
		data = append(append([]byte{}, sealedMagic...), sealed...)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("filestore mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("filestore temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("filestore write: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("filestore chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("filestore close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("filestore rename: %w", err)
	}
	return nil
}

// seal layout: salt | nonce | ciphertext.
func (s *Store) seal(plain []byte) ([]byte, error) {
	if s.salt == nil {
		salt := make([]byte, saltLength)
		if _, err := rand.Read(salt); err != nil {
			return nil, fmt.Errorf("filestore salt: %w", err)
		}
		s.salt = salt
		s.keyBase = nil
	}
	aead, err := chacha20poly1305.NewX(s.deriveKey(s.salt))
	if err != nil {
		return nil, fmt.Errorf("filestore cipher: %w", err)
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plain)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("filestore nonce: %w", err)
	}

	out := append([]byte{}, s.salt...)
	return append(out, aead.Seal(nonce, nonce, plain, sealedMagic)...), nil
}

func (s *Store) open(sealed []byte) ([]byte, error) {
	if s.passphrase == "" {
		return nil, apperrors.ErrSealed
	}
	if len(sealed) < saltLength+chacha20poly1305.NonceSizeX {
		return nil, apperrors.Wrapf(apperrors.ErrSealed, "filestore %s truncated", s.path)
	}

	salt := append([]byte{}, sealed[:saltLength]...)
	key := s.deriveKey(salt)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("filestore cipher: %w", err)
	}
	body := sealed[saltLength:]
	nonce, ciphertext := body[:aead.NonceSize()], body[aead.NonceSize():]

	plain, err := aead.Open(nil, nonce, ciphertext, sealedMagic)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrSealed, "filestore %s", s.path)
	}
	s.salt, s.keyBase = salt, key
	return plain, nil
}

// deriveKey reuses the cached Argon2id output when salt matches the current one.
func (s *Store) deriveKey(salt []byte) []byte {
	if s.keyBase != nil && bytes.Equal(salt, s.salt) {
		return s.keyBase
	}
	key := argon2.IDKey([]byte(s.passphrase), salt, 1, 64*1024, 4, chacha20poly1305.KeySize)
	if bytes.Equal(salt, s.salt) {
		s.keyBase = key
	}
	return key
}
