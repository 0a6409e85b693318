package storage

import (
	"os"
	"sync"

	json "github.com/goccy/go-json"
	"go.uber.org/atomic"

	"gamelens/internal/providers"
)

const snapshotVersion = 1

type snapshot struct {
	Version int                        `json:"version"`
	Values  map[string]json.RawMessage `json:"values"`
}

// FileStore keeps values in memory and writes them as one zstd-compressed
// JSON snapshot. Writes to disk go through a temp file and a rename.
type FileStore struct {
	mu         sync.RWMutex
	path       string
	values     map[string]json.RawMessage
	dirty      atomic.Bool
	compressor CompressorInterface
	logger     providers.Logger
}

func NewFileStore(path string, compressor CompressorInterface, logger providers.Logger) *FileStore {
	return &FileStore{
		path:       path,
		values:     make(map[string]json.RawMessage),
		compressor: compressor,
		logger:     logger,
	}
}

func (f *FileStore) Get(key string, dst any) (bool, error) {
	f.mu.RLock()
	raw, ok := f.values[key]
	f.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, err
	}
	return true, nil
}

func (f *FileStore) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.values[key] = raw
	f.mu.Unlock()
	f.dirty.Store(true)
	return nil
}

func (f *FileStore) Delete(key string) error {
	f.mu.Lock()
	delete(f.values, key)
	f.mu.Unlock()
	f.dirty.Store(true)
	return nil
}

// Persist writes the snapshot when something changed since the last write.
func (f *FileStore) Persist() error {
	if f.path == "" || !f.dirty.Swap(false) {
		return nil
	}
	if err := f.saveToFile(); err != nil {
		f.dirty.Store(true)
		return err
	}
	return nil
}

func (f *FileStore) saveToFile() error {
	f.mu.RLock()
	jsonData, err := json.Marshal(snapshot{Version: snapshotVersion, Values: f.values})
	f.mu.RUnlock()
	if err != nil {
		return err
	}

	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	tmpFile := f.path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, f.path)
}

// Load replaces the in-memory values with the snapshot on disk. A missing
// file is not an error.
func (f *FileStore) Load() error {
	if f.path == "" {
		return nil
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressed, err := f.compressor.Decompress(data)
	if err != nil {
		return err
	}

	var snap snapshot
	if err := json.Unmarshal(decompressed, &snap); err != nil {
		return err
	}
	if snap.Values == nil {
		f.logger.Warnf(providers.TypeApp, "Store snapshot %s has no values, starting empty", f.path)
		snap.Values = make(map[string]json.RawMessage)
	}

	f.mu.Lock()
	f.values = snap.Values
	f.mu.Unlock()
	f.logger.Infof(providers.TypeApp, "Loaded %d keys from %s", len(snap.Values), f.path)
	return nil
}

func (f *FileStore) Close() error {
	err := f.Persist()
	f.compressor.Close()
	return err
}
