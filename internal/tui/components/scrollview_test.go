package components

import "testing"

func TestScrollViewFollowsToBottomByDefault(t *testing.T) {
	m := NewScrollViewModel()
	m.SetSize(40, 3)
	lines := make([]ScrollLine, 10)
	for i := range lines {
		lines[i] = ScrollLine{Text: "line"}
	}
	m.SetLines(lines)

	if m.offset != 7 {
		t.Fatalf("offset = %d, want 7 (10 lines, height 3, following)", m.offset)
	}
}

func TestScrollViewGKeyJumpsToTop(t *testing.T) {
	m := NewScrollViewModel()
	m.SetSize(40, 3)
	lines := make([]ScrollLine, 10)
	m.SetLines(lines)

	m, _ = m.Update(keyMsg("g"))
	if m.offset != 0 {
		t.Fatalf("offset after 'g' = %d, want 0", m.offset)
	}
}

func TestScrollViewEmptyRendersPlaceholder(t *testing.T) {
	m := NewScrollViewModel()
	m.SetSize(20, 2)
	if got := m.View(); got == "" {
		t.Fatal("expected a non-empty placeholder for an empty view")
	}
}
