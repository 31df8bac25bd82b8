package cache

import (
	"bytes"
	"strings"
	"testing"
)

func TestKeyDependsOnEveryInput(t *testing.T) {
	base := Key("namaste sab log", "voice-a", "model-1", "mp3_44100_128")
	variants := []string{
		Key("namaste sab log!", "voice-a", "model-1", "mp3_44100_128"),
		Key("namaste sab log", "voice-b", "model-1", "mp3_44100_128"),
		Key("namaste sab log", "voice-a", "model-2", "mp3_44100_128"),
		Key("namaste sab log", "voice-a", "model-1", "mp3_22050_32"),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collided with base key", i)
		}
	}
	if again := Key("namaste sab log", "voice-a", "model-1", "mp3_44100_128"); again != base {
		t.Error("same inputs produced different keys")
	}
	if len(base) != 64 {
		t.Errorf("key length = %d, want 64 hex chars", len(base))
	}
}

func TestDiskRoundTrip(t *testing.T) {
	d, err := Open(t.TempDir(), 1<<20)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	key := Key("arre yaar", "voice-a", "model-1", "mp3_44100_128")
	audio := bytes.Repeat([]byte{0xFF, 0xFB, 0x90, 0x00}, 512)

	if _, ok := d.Get(key); ok {
		t.Fatal("hit before Put")
	}
	if err := d.Put(key, audio); err != nil {
		t.Fatal(err)
	}
	got, ok := d.Get(key)
	if !ok {
		t.Fatal("miss after Put")
	}
	if !bytes.Equal(got, audio) {
		t.Fatal("audio corrupted through cache")
	}

	s := d.Stats()
	if s.Hits != 1 || s.Misses != 1 || s.ItemCount != 1 {
		t.Errorf("stats = %+v", s)
	}
}

func TestDiskSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	key := Key("kya baat hai", "voice-b", "model-1", "mp3_44100_128")
	audio := []byte(strings.Repeat("compressible audio frame ", 200))

	d, err := Open(dir, 1<<20)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Put(key, audio); err != nil {
		t.Fatal(err)
	}
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}

	d, err = Open(dir, 1<<20)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	got, ok := d.Get(key)
	if !ok {
		t.Fatal("entry lost across reopen")
	}
	if !bytes.Equal(got, audio) {
		t.Fatal("audio corrupted across reopen")
	}
}

func TestDiskEvictsLeastRecentlyUsed(t *testing.T) {
	d, err := Open(t.TempDir(), 3000)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	// Incompressible payloads under the 1KB compression floor, so
	// each occupies exactly its own size.
	mk := func(seed byte) []byte {
		b := make([]byte, 1000)
		for i := range b {
			b[i] = seed + byte(i*31)
		}
		return b
	}
	keys := []string{"k1", "k2", "k3"}
	for i, k := range keys {
		if err := d.Put(k, mk(byte(i))); err != nil {
			t.Fatal(err)
		}
	}

	// Touch k1 so k2 becomes the eviction candidate.
	if _, ok := d.Get("k1"); !ok {
		t.Fatal("k1 missing")
	}
	if err := d.Put("k4", mk(9)); err != nil {
		t.Fatal(err)
	}

	if _, ok := d.Get("k2"); ok {
		t.Error("k2 should have been evicted")
	}
	for _, k := range []string{"k1", "k3", "k4"} {
		if _, ok := d.Get(k); !ok {
			t.Errorf("%s evicted unexpectedly", k)
		}
	}
}

func TestDiskRejectsOversizedItem(t *testing.T) {
	d, err := Open(t.TempDir(), 100)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	big := make([]byte, 4096)
	for i := range big {
		big[i] = byte(i * 37)
	}
	if err := d.Put("big", big); err != ErrItemTooLarge {
		t.Errorf("err = %v, want ErrItemTooLarge", err)
	}
}

func TestDiskDeleteAndClear(t *testing.T) {
	d, err := Open(t.TempDir(), 1<<20)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	d.Put("a", []byte("one"))
	d.Put("b", []byte("two"))

	d.Delete("a")
	if _, ok := d.Get("a"); ok {
		t.Error("a still present after Delete")
	}
	d.Delete("a") // no-op

	if err := d.Clear(); err != nil {
		t.Fatal(err)
	}
	if s := d.Stats(); s.ItemCount != 0 || s.Size != 0 {
		t.Errorf("stats after Clear = %+v", s)
	}
}
