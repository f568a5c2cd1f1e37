package recorder

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/SasaKuruppuarachchi/tcp-communication/internal/domain"
)

func sampleState() *domain.RecordingState {
	return &domain.RecordingState{
		PID:       4242,
		BagName:   "agi_log_20260830_120000",
		BagPath:   "/data/bags/agi_log_20260830_120000",
		StartTime: time.Unix(1756555200, 500000000),
		Command:   []string{"ros2", "bag", "record", "-o", "/data/bags/agi_log_20260830_120000", "/a"},
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := NewFileStoreAt(filepath.Join(t.TempDir(), "state", "recording_state.json"))

	if _, ok := store.Read(); ok {
		t.Fatal("fresh store should read as absent")
	}

	want := sampleState()
	if err := store.Write(want); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, ok := store.Read()
	if !ok {
		t.Fatal("Read: expected state")
	}
	if got.PID != want.PID || got.BagName != want.BagName || got.BagPath != want.BagPath {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if got.StartTime.Unix() != want.StartTime.Unix() {
		t.Errorf("start time = %v, want %v", got.StartTime, want.StartTime)
	}
	if len(got.Command) != len(want.Command) {
		t.Errorf("command = %v, want %v", got.Command, want.Command)
	}
}

func TestFileStoreWriteReplaces(t *testing.T) {
	store := NewFileStoreAt(filepath.Join(t.TempDir(), "recording_state.json"))

	first := sampleState()
	if err := store.Write(first); err != nil {
		t.Fatal(err)
	}
	second := sampleState()
	second.PID = 9999
	second.BagName = "agi_log_other"
	if err := store.Write(second); err != nil {
		t.Fatal(err)
	}

	got, ok := store.Read()
	if !ok || got.PID != 9999 {
		t.Errorf("store should hold the latest record, got %+v", got)
	}
}

func TestFileStoreCorruptReadsAsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recording_state.json")
	store := NewFileStoreAt(path)

	for _, content := range []string{"{not json", "", `{"pid": "oops"}`, `{"pid": 1}`} {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, ok := store.Read(); ok {
			t.Errorf("content %q should read as absent", content)
		}
	}
}

func TestFileStoreClear(t *testing.T) {
	store := NewFileStoreAt(filepath.Join(t.TempDir(), "recording_state.json"))

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear on empty store: %v", err)
	}
	if err := store.Write(sampleState()); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok := store.Read(); ok {
		t.Error("state should be absent after Clear")
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	if _, ok := store.Read(); ok {
		t.Fatal("fresh store should be empty")
	}
	if err := store.Write(sampleState()); err != nil {
		t.Fatal(err)
	}
	got, ok := store.Read()
	if !ok || got.PID != 4242 {
		t.Errorf("Read = %+v, %v", got, ok)
	}

	// Mutating the returned copy must not affect the stored record.
	got.PID = 1
	again, _ := store.Read()
	if again.PID != 4242 {
		t.Error("Read must return a copy")
	}

	if err := store.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, ok := store.Read(); ok {
		t.Error("state should be absent after Clear")
	}
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()

	// The duration timer stops a session from its own goroutine while the
	// starter keeps polling liveness; the fake must survive that under the
	// race detector.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			if err := store.Write(sampleState()); err != nil {
				t.Errorf("Write: %v", err)
				return
			}
			if err := store.Clear(); err != nil {
				t.Errorf("Clear: %v", err)
				return
			}
		}
	}()
	for i := 0; i < 200; i++ {
		store.Read()
	}
	<-done
}
