package container

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Store type identifiers.
const (
	MemoryStoreType = "MemoryStore"
	LocalStoreType  = "LocalStore"
)

const dirPermissionBits = 0755

// ErrNotFound is returned by Get for keys that were never written.
var ErrNotFound = errors.New("not found")

// Store is the key/value surface a container persists through. Keys are
// "/"-separated logical paths.
type Store interface {
	// Get returns a reader over the value stored at key, or ErrNotFound.
	Get(key string) (io.ReadCloser, error)

	// Put writes val as the value of key, replacing any existing value.
	Put(key string, val io.Reader) error

	// Exists reports whether key holds a value.
	Exists(key string) bool

	// Type returns the store type identifier.
	Type() string
}

// MemoryStore keeps values in a map. Used in tests and anywhere a container
// is assembled without touching disk.
type MemoryStore struct {
	lk   sync.Mutex
	data map[string][]byte
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string][]byte{}}
}

// Type returns MemoryStoreType.
func (s *MemoryStore) Type() string { return MemoryStoreType }

// Get returns the value stored at key.
func (s *MemoryStore) Get(key string) (io.ReadCloser, error) {
	s.lk.Lock()
	defer s.lk.Unlock()
	d, ok := s.data[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return io.NopCloser(bytes.NewReader(d)), nil
}

// Put stores the contents of val at key.
func (s *MemoryStore) Put(key string, val io.Reader) error {
	d, err := io.ReadAll(val)
	if err != nil {
		return err
	}
	s.lk.Lock()
	defer s.lk.Unlock()
	s.data[key] = d
	return nil
}

// Exists reports whether key holds a value.
func (s *MemoryStore) Exists(key string) bool {
	s.lk.Lock()
	defer s.lk.Unlock()
	_, ok := s.data[key]
	return ok
}

// Keys returns every stored key in sorted order.
func (s *MemoryStore) Keys() []string {
	s.lk.Lock()
	defer s.lk.Unlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LocalStore maps keys onto files under a base directory. The base directory
// is the on-disk container: opening the same base again appends to it.
type LocalStore struct {
	base string
}

var _ Store = (*LocalStore)(nil)

// NewLocalStore opens (creating if necessary) a container directory at base.
func NewLocalStore(base string) (*LocalStore, error) {
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(base, dirPermissionBits); err != nil {
		return nil, fmt.Errorf("opening container store: %w", err)
	}
	return &LocalStore{base: base}, nil
}

// Type returns LocalStoreType.
func (s *LocalStore) Type() string { return LocalStoreType }

// Get opens the file backing key.
func (s *LocalStore) Get(key string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.base, filepath.FromSlash(key)))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return f, err
}

// Put writes the contents of val to the file backing key, creating parent
// directories as needed.
func (s *LocalStore) Put(key string, val io.Reader) error {
	path := filepath.Join(s.base, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), dirPermissionBits); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, val); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Exists reports whether the file backing key exists.
func (s *LocalStore) Exists(key string) bool {
	_, err := os.Stat(filepath.Join(s.base, filepath.FromSlash(key)))
	return err == nil
}
