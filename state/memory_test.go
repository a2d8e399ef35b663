package state

import (
	"errors"
	"sort"
	"sync"
	"testing"
	"time"
)

// ============================================================================
// LEVEL 1: Unit Tests - Insert/Load/Delete
// ============================================================================

func TestMemoryStore_Load_NotFound(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	_, err := s.Load("nonexistent")
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_InsertLoad(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	prev, err := s.Insert("test.key", "v1")
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if prev != nil {
		t.Errorf("expected no previous value, got %v", prev)
	}

	got, err := s.Load("test.key")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != "v1" {
		t.Errorf("expected v1, got %v", got)
	}
}

func TestMemoryStore_Insert_LastWriterWins(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	s.Insert("k", 1)
	prev, err := s.Insert("k", "two")
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if prev != 1 {
		t.Errorf("expected previous 1, got %v", prev)
	}

	got, _ := s.Load("k")
	if got != "two" {
		t.Errorf("expected two, got %v", got)
	}
}

func TestMemoryStore_Revision(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	s.Insert("a", 1)
	r1, err := s.Revision("a")
	if err != nil {
		t.Fatalf("Revision failed: %v", err)
	}
	s.Insert("a", 2)
	r2, _ := s.Revision("a")
	if r2 <= r1 {
		t.Errorf("revision did not advance: %d -> %d", r1, r2)
	}

	if _, err := s.Revision("missing"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	s.Insert("test.key", 1)
	if err := s.Delete("test.key"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err := s.Load("test.key")
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryStore_Delete_Nonexistent(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	if err := s.Delete("nonexistent"); err != nil {
		t.Errorf("Delete of nonexistent key should succeed, got %v", err)
	}
}

// ============================================================================
// LEVEL 2: Integration Tests - Keys, Watch
// ============================================================================

func TestMemoryStore_Keys(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	s.Insert("counter.a", 1)
	s.Insert("counter.b", 2)
	s.Insert("other.c", 3)

	keys, err := s.Keys("counter.*")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "counter.a" || keys[1] != "counter.b" {
		t.Errorf("unexpected keys: %v", keys)
	}

	all, _ := s.Keys("*")
	if len(all) != 3 {
		t.Errorf("expected 3 keys, got %d", len(all))
	}
}

func TestMemoryStore_Watch(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	ch, err := s.Watch("counter.*")
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		s.Insert("other.x", 0)
		s.Insert("counter.hits", 7)
	}()

	select {
	case kv := <-ch:
		if kv.Key != "counter.hits" {
			t.Errorf("expected counter.hits, got %s", kv.Key)
		}
		if kv.Value != 7 {
			t.Errorf("expected 7, got %v", kv.Value)
		}
		if kv.Operation != OpPut {
			t.Errorf("expected OpPut, got %v", kv.Operation)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for watch notification")
	}
}

func TestMemoryStore_Watch_Update(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	s.Insert("counter", 0)
	ch, _ := s.Watch("counter")

	Update(s, "counter", func(n *int) error {
		*n = 5
		return nil
	})

	select {
	case kv := <-ch:
		if kv.Value != 5 {
			t.Errorf("expected 5, got %v", kv.Value)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for update notification")
	}
}

func TestMemoryStore_Watch_Delete(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	s.Insert("counter.x", 1)
	ch, _ := s.Watch("counter.*")

	go func() {
		time.Sleep(10 * time.Millisecond)
		s.Delete("counter.x")
	}()

	select {
	case kv := <-ch:
		if kv.Operation != OpDelete {
			t.Errorf("expected OpDelete, got %v", kv.Operation)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for delete notification")
	}
}

// ============================================================================
// LEVEL 3: System Tests - Concurrent access
// ============================================================================

func TestMemoryStore_ConcurrentUpdate(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	const goroutines = 10
	const iterations = 100

	s.Insert("counter", 0)

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				Update(s, "counter", func(n *int) error {
					*n++
					return nil
				})
			}
		}()
	}
	wg.Wait()

	got, err := Get[int](s, "counter")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != goroutines*iterations {
		t.Errorf("expected %d, got %d", goroutines*iterations, got)
	}
}

func TestMemoryStore_ConcurrentInsert(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Insert("shared", id)
			}
		}(i)
	}
	wg.Wait()

	if _, err := Get[int](s, "shared"); err != nil {
		t.Errorf("expected value, got %v", err)
	}
}

// ============================================================================
// Close
// ============================================================================

func TestMemoryStore_CloseReleasesWatchers(t *testing.T) {
	s := NewMemoryStore()

	ch, _ := s.Watch("*")
	s.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("watch channel not closed")
	}
}

func TestMemoryStore_OperationsAfterClose(t *testing.T) {
	s := NewMemoryStore()
	s.Close()

	if _, err := s.Insert("k", 1); !errors.Is(err, ErrClosed) {
		t.Errorf("Insert: expected ErrClosed, got %v", err)
	}
	if _, err := s.Load("k"); !errors.Is(err, ErrClosed) {
		t.Errorf("Load: expected ErrClosed, got %v", err)
	}
	if err := s.Modify("k", func(v any) (any, error) { return v, nil }); !errors.Is(err, ErrClosed) {
		t.Errorf("Modify: expected ErrClosed, got %v", err)
	}
	if err := s.Delete("k"); !errors.Is(err, ErrClosed) {
		t.Errorf("Delete: expected ErrClosed, got %v", err)
	}
	if _, err := s.Keys("*"); !errors.Is(err, ErrClosed) {
		t.Errorf("Keys: expected ErrClosed, got %v", err)
	}
	if _, err := s.Watch("*"); !errors.Is(err, ErrClosed) {
		t.Errorf("Watch: expected ErrClosed, got %v", err)
	}

	// Close is idempotent
	if err := s.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}

func TestMemoryStore_KeyValidation(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	for _, key := range []string{"", "has space", ".lead", "trail."} {
		if _, err := s.Insert(key, 1); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Insert(%q): expected ErrInvalidKey, got %v", key, err)
		}
	}
}
