package storagefake

import (
	"sync"

	"github.com/jrsteele09/go-subscription-client/storage"
)

var _ storage.Store = (*FakeStore)(nil)

type FakeStore struct {
	values map[string]string
	writes int
	lock   sync.RWMutex
}

func NewFakeStore() *FakeStore {
	return &FakeStore{values: make(map[string]string)}
}

func (fs *FakeStore) Get(key string) (string, error) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	v, ok := fs.values[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return v, nil
}

func (fs *FakeStore) Put(values map[string]string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	for k, v := range values {
		fs.values[k] = v
	}
	fs.writes++
	return nil
}

func (fs *FakeStore) Delete(keys ...string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	for _, k := range keys {
		delete(fs.values, k)
	}
	fs.writes++
	return nil
}

// Has reports whether key is present.
func (fs *FakeStore) Has(key string) bool {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	_, ok := fs.values[key]
	return ok
}

// Writes returns the number of Put and Delete calls.
func (fs *FakeStore) Writes() int {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return fs.writes
}
