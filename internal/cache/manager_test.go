package cache

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func pcm(n int) []byte {
	// Low-entropy data compresses well, like silence between words.
	return bytes.Repeat([]byte{0, 1, 0, 2}, n/4)
}

func TestKey(t *testing.T) {
	a := Key("Hello.", "en_US-lessac-medium", 1)
	tests := []struct {
		name string
		key  string
		same bool
	}{
		{"identical", Key("Hello.", "en_US-lessac-medium", 1), true},
		{"rounded rate", Key("Hello.", "en_US-lessac-medium", 1.001), true},
		{"other text", Key("Hello!", "en_US-lessac-medium", 1), false},
		{"other voice", Key("Hello.", "en_GB-alan-low", 1), false},
		{"other rate", Key("Hello.", "en_US-lessac-medium", 1.5), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key == a; got != tt.same {
				t.Errorf("Key() equal = %v, want %v", got, tt.same)
			}
		})
	}
	if len(a) != 32 {
		t.Errorf("len(Key()) = %d, want 32", len(a))
	}
}

func TestDiskCache_RoundTripAndReopen(t *testing.T) {
	dir := t.TempDir()
	dc, err := NewDiskCache(dir, 1<<20, 3)
	if err != nil {
		t.Fatalf("NewDiskCache() = %v", err)
	}
	clip := pcm(4096)
	if err := dc.Put("clip", clip); err != nil {
		t.Fatalf("Put() = %v", err)
	}
	if s := dc.Stats(); s.Size >= int64(len(clip)) {
		t.Errorf("stored size = %d, want less than %d", s.Size, len(clip))
	}
	if err := dc.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}

	reopened, err := NewDiskCache(dir, 1<<20, 3)
	if err != nil {
		t.Fatalf("NewDiskCache() reopen = %v", err)
	}
	got, ok := reopened.Get("clip")
	if !ok || !bytes.Equal(got, clip) {
		t.Errorf("Get() after reopen = %d bytes, %v, want %d bytes, true", len(got), ok, len(clip))
	}
}

func TestDiskCache_EvictsLeastRecentlyRead(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir(), 1<<20, 3)
	if err != nil {
		t.Fatalf("NewDiskCache() = %v", err)
	}
	_ = dc.Put("a", []byte("aaaa"))
	time.Sleep(5 * time.Millisecond)
	_ = dc.Put("b", []byte("bbbb"))
	dc.capacity = dc.Stats().Size // room for exactly what is stored
	time.Sleep(5 * time.Millisecond)
	dc.Get("a")

	if err := dc.Put("c", []byte("cccc")); err != nil {
		t.Fatalf("Put(c) = %v", err)
	}
	if _, ok := dc.Get("b"); ok {
		t.Error("least recently read clip b survived eviction")
	}
	if _, ok := dc.Get("a"); !ok {
		t.Error("recently read clip a was evicted")
	}
}

func TestDiskCache_ItemTooLarge(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir(), 1, 3)
	if err != nil {
		t.Fatalf("NewDiskCache() = %v", err)
	}
	if err := dc.Put("k", []byte("value")); !errors.Is(err, ErrItemTooLarge) {
		t.Errorf("Put() = %v, want %v", err, ErrItemTooLarge)
	}
}

func TestManager_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(Options{Dir: dir, MemoryBytes: 1 << 20, DiskBytes: 1 << 20})
	if err != nil {
		t.Fatalf("NewManager() = %v", err)
	}
	clip := pcm(1024)
	if err := m.Put("k", clip); err != nil {
		t.Fatalf("Put() = %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}

	m, err = NewManager(Options{Dir: dir, MemoryBytes: 1 << 20, DiskBytes: 1 << 20})
	if err != nil {
		t.Fatalf("NewManager() reopen = %v", err)
	}
	defer m.Close()

	got, ok := m.Get("k")
	if !ok || !bytes.Equal(got, clip) {
		t.Fatalf("Get() = %d bytes, %v, want %d bytes, true", len(got), ok, len(clip))
	}
	stats := m.Stats()
	if stats[0].Level != LevelMemory || stats[0].Items != 1 {
		t.Errorf("memory stats = %+v, want one promoted item", stats[0])
	}
	if stats[1].Hits != 1 {
		t.Errorf("disk hits = %d, want 1", stats[1].Hits)
	}
}

func TestManager_Clear(t *testing.T) {
	m, err := NewManager(Options{Dir: t.TempDir(), MemoryBytes: 1 << 20, DiskBytes: 1 << 20})
	if err != nil {
		t.Fatalf("NewManager() = %v", err)
	}
	defer m.Close()

	_ = m.Put("a", pcm(64))
	_ = m.Put("b", pcm(64))
	if err := m.Clear(); err != nil {
		t.Fatalf("Clear() = %v", err)
	}
	for _, s := range m.Stats() {
		if s.Items != 0 || s.Size != 0 {
			t.Errorf("%s stats after Clear() = %+v, want empty", s.Level, s)
		}
	}
}

func TestNewManagerRequiresDir(t *testing.T) {
	if _, err := NewManager(Options{}); err == nil {
		t.Error("NewManager() without Dir should fail")
	}
}

func TestStatsHitRate(t *testing.T) {
	tests := []struct {
		s    Stats
		want float64
	}{
		{Stats{}, 0},
		{Stats{Hits: 3, Misses: 1}, 0.75},
	}
	for _, tt := range tests {
		if got := tt.s.HitRate(); got != tt.want {
			t.Errorf("HitRate() = %v, want %v", got, tt.want)
		}
	}
}
