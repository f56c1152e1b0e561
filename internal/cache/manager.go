package cache

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Options configures a Manager.
type Options struct {
	Dir              string
	MemoryBytes      int64
	DiskBytes        int64
	TTL              time.Duration
	CompressionLevel int
	Logger           *log.Logger
}

// Manager looks clips up in memory, then on disk, promoting disk hits.
type Manager struct {
	memory *MemoryCache
	disk   *DiskCache
	ttl    time.Duration
	logger *log.Logger

	writes sync.WaitGroup
}

// NewManager opens both levels. Expired disk clips are pruned on open.
func NewManager(opts Options) (*Manager, error) {
	if opts.Dir == "" {
		return nil, errors.New("cache directory is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default().WithPrefix("cache")
	}

	disk, err := NewDiskCache(opts.Dir, opts.DiskBytes, opts.CompressionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create disk cache: %w", err)
	}
	m := &Manager{
		memory: NewMemoryCache(opts.MemoryBytes),
		disk:   disk,
		ttl:    opts.TTL,
		logger: logger,
	}
	if m.ttl > 0 {
		if n := disk.Prune(m.ttl); n > 0 {
			logger.Debug("pruned expired clips", "count", n)
		}
	}
	return m, nil
}

// Get returns the clip for key from the fastest level holding it.
func (m *Manager) Get(key string) ([]byte, bool) {
	if data, ok := m.memory.Get(key); ok {
		return data, true
	}
	data, ok := m.disk.Get(key)
	if !ok {
		return nil, false
	}
	_ = m.memory.Put(key, data) // Clips larger than memory stay on disk only
	return data, true
}

// Put stores a clip in memory now and on disk in the background.
func (m *Manager) Put(key string, value []byte) error {
	if err := m.memory.Put(key, value); err != nil && !errors.Is(err, ErrItemTooLarge) {
		return fmt.Errorf("memory cache: %w", err)
	}
	m.writes.Add(1)
	go func() {
		defer m.writes.Done()
		if err := m.disk.Put(key, value); err != nil {
			m.logger.Warn("failed to store clip on disk", "key", key, "err", err)
		}
	}()
	return nil
}

// Clear empties both levels.
func (m *Manager) Clear() error {
	m.writes.Wait()
	return errors.Join(m.memory.Clear(), m.disk.Clear())
}

// Stats reports memory then disk statistics.
func (m *Manager) Stats() []Stats {
	return []Stats{m.memory.Stats(), m.disk.Stats()}
}

// Dir returns the disk cache directory.
func (m *Manager) Dir() string { return m.disk.Dir() }

// Close waits for pending disk writes and persists the index.
func (m *Manager) Close() error {
	m.writes.Wait()
	return m.disk.Close()
}
