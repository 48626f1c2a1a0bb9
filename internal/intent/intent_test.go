package intent

import (
	"testing"

	"github.com/manasm11/packtui/internal/pkgdb"
)

func TestSetDefaultClearsEntry(t *testing.T) {
	s := NewStore()
	s.Set(1, Install)
	if !s.Contains(1) {
		t.Fatal("expected handle 1 to be recorded")
	}
	s.Set(1, Default)
	if s.Contains(1) {
		t.Fatal("setting Default must clear the entry, not store it")
	}
	if s.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", s.Len())
	}
}

func TestGetReturnsDefaultForUnknown(t *testing.T) {
	s := NewStore()
	if got := s.Get(42); got != Default {
		t.Fatalf("Get(unknown) = %v, want Default", got)
	}
}

func TestIterIsSortedByHandle(t *testing.T) {
	s := NewStore()
	s.Set(pkgdb.Handle(3), Remove)
	s.Set(pkgdb.Handle(1), Install)
	s.Set(pkgdb.Handle(2), Hold)

	entries := s.Iter()
	if len(entries) != 3 {
		t.Fatalf("Iter() len = %d, want 3", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Handle >= entries[i].Handle {
			t.Fatalf("Iter() not sorted: %+v", entries)
		}
	}
}

func TestClearAll(t *testing.T) {
	s := NewStore()
	s.Set(1, Install)
	s.Set(2, Remove)
	s.ClearAll()
	if s.Len() != 0 {
		t.Fatalf("Len() after ClearAll = %d, want 0", s.Len())
	}
}

func TestNoDefaultEntriesEverStored(t *testing.T) {
	s := NewStore()
	s.Set(5, Default)
	if s.Len() != 0 {
		t.Fatal("Set(h, Default) on an empty store must not create an entry")
	}
}
