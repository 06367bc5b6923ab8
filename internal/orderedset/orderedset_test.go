package orderedset

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSetKeepsFirstOccurrenceOrder(t *testing.T) {
	s := New[string]()
	if !s.Add("b") {
		t.Fatal("first Add returned false")
	}
	s.Add("a")
	if s.Add("b") {
		t.Fatal("duplicate Add returned true")
	}
	s.Add("c")

	if diff := cmp.Diff([]string{"b", "a", "c"}, s.Items()); diff != "" {
		t.Fatalf("Items mismatch (-want +got):\n%s", diff)
	}
	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3", s.Len())
	}
	if !s.Has("a") || s.Has("d") {
		t.Fatal("Has gave wrong membership")
	}
}
