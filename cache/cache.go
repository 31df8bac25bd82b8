// Package cache stores rendered line audio on disk, keyed by the
// content that produced it. A line whose normalized text, voice, model,
// and output encoding are unchanged replays from disk instead of being
// synthesized again.
package cache

import (
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// ErrItemTooLarge is returned when a single entry exceeds the cache
// capacity.
var ErrItemTooLarge = errors.New("cache: item larger than capacity")

// Key derives the cache key for one rendered line. Any change to the
// spoken text or the voice configuration produces a different key.
func Key(normalizedText, voiceID, model, encoding string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%s", normalizedText, voiceID, model, encoding)
	return hex.EncodeToString(h.Sum(nil))
}

// Stats summarizes cache behavior for one process lifetime.
type Stats struct {
	Hits      int64
	Misses    int64
	Size      int64
	ItemCount int64
}

type entry struct {
	Key          string
	Size         int64
	OriginalSize int64
	Stored       time.Time
	LastAccess   time.Time
	Compressed   bool
}

// Disk is a compressed, capacity-bounded audio cache. Entries are
// zstd-compressed when that wins, and the least recently used entries
// are evicted when the cache outgrows its capacity.
type Disk struct {
	dir      string
	capacity int64

	mu      sync.Mutex
	size    int64
	index   map[string]*entry
	stats   Stats
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

const indexFile = "index.gob"

// Open opens (or creates) a cache rooted at dir with the given
// capacity in bytes.
func Open(dir string, capacity int64) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}

	d := &Disk{
		dir:      dir,
		capacity: capacity,
		index:    make(map[string]*entry),
		encoder:  enc,
		decoder:  dec,
	}
	// A missing or damaged index just means starting cold; the files
	// it pointed at are reclaimed as entries are rewritten.
	if err := d.loadIndex(); err != nil {
		d.index = make(map[string]*entry)
		d.size = 0
	}
	return d, nil
}

// Get returns the audio stored under key, or ok=false on a miss. A
// missing or unreadable file is treated as a miss and dropped from the
// index.
func (d *Disk) Get(key string) ([]byte, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.index[key]
	if !ok {
		d.stats.Misses++
		return nil, false
	}

	data, err := os.ReadFile(d.path(key))
	if err != nil {
		d.drop(e)
		d.stats.Misses++
		return nil, false
	}
	if e.Compressed {
		data, err = d.decoder.DecodeAll(data, nil)
		if err != nil {
			os.Remove(d.path(key))
			d.drop(e)
			d.stats.Misses++
			return nil, false
		}
	}

	e.LastAccess = time.Now()
	d.stats.Hits++
	return data, true
}

// Put stores audio under key, evicting least recently used entries as
// needed to stay within capacity.
func (d *Disk) Put(key string, audio []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	payload := audio
	compressed := false
	// Tiny payloads aren't worth the header overhead.
	if len(audio) > 1024 {
		if c := d.encoder.EncodeAll(audio, nil); len(c) < len(audio) {
			payload = c
			compressed = true
		}
	}

	if int64(len(payload)) > d.capacity {
		return ErrItemTooLarge
	}

	if old, ok := d.index[key]; ok {
		d.drop(old)
	}
	for d.size+int64(len(payload)) > d.capacity && len(d.index) > 0 {
		d.evictOldest()
	}

	tmp := d.path(key) + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := os.Rename(tmp, d.path(key)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit cache entry: %w", err)
	}

	now := time.Now()
	d.index[key] = &entry{
		Key:          key,
		Size:         int64(len(payload)),
		OriginalSize: int64(len(audio)),
		Stored:       now,
		LastAccess:   now,
		Compressed:   compressed,
	}
	d.size += int64(len(payload))
	return d.saveIndex()
}

// Delete removes one entry; deleting a missing key is a no-op.
func (d *Disk) Delete(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.index[key]
	if !ok {
		return
	}
	os.Remove(d.path(key))
	d.drop(e)
	d.saveIndex()
}

// Clear removes every entry.
func (d *Disk) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key := range d.index {
		os.Remove(d.path(key))
	}
	d.index = make(map[string]*entry)
	d.size = 0
	return d.saveIndex()
}

// Stats returns a snapshot of hit and size counters.
func (d *Disk) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := d.stats
	s.Size = d.size
	s.ItemCount = int64(len(d.index))
	return s
}

// Close flushes the index and releases the compressor.
func (d *Disk) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	err := d.saveIndex()
	d.encoder.Close()
	d.decoder.Close()
	return err
}

func (d *Disk) path(key string) string {
	return filepath.Join(d.dir, key+".bin")
}

// drop removes e from the index and size accounting only.
func (d *Disk) drop(e *entry) {
	delete(d.index, e.Key)
	d.size -= e.Size
}

func (d *Disk) evictOldest() {
	var oldest *entry
	for _, e := range d.index {
		if oldest == nil || e.LastAccess.Before(oldest.LastAccess) {
			oldest = e
		}
	}
	if oldest == nil {
		return
	}
	os.Remove(d.path(oldest.Key))
	d.drop(oldest)
}

func (d *Disk) loadIndex() error {
	f, err := os.Open(filepath.Join(d.dir, indexFile))
	if err != nil {
		return err
	}
	defer f.Close()

	var entries []*entry
	if err := gob.NewDecoder(f).Decode(&entries); err != nil {
		return err
	}
	for _, e := range entries {
		d.index[e.Key] = e
		d.size += e.Size
	}
	return nil
}

func (d *Disk) saveIndex() error {
	entries := make([]*entry, 0, len(d.index))
	for _, e := range d.index {
		entries = append(entries, e)
	}

	tmp := filepath.Join(d.dir, indexFile+".tmp")
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(f).Encode(entries); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, filepath.Join(d.dir, indexFile))
}
