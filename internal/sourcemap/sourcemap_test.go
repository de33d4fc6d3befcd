package sourcemap

import "testing"

func TestOffsetToLineColMonotone(t *testing.T) {
	text := []byte("abc\ndef\nghi")
	sm := New(text)
	prev := Position{-1, -1}
	for off := 0; off <= len(text); off++ {
		pos := sm.OffsetToLineCol(off)
		if pos.Line < prev.Line || (pos.Line == prev.Line && pos.Column < prev.Column) {
			t.Fatalf("offsetToLineCol not monotone at %d: got %+v after %+v", off, pos, prev)
		}
		prev = pos
	}
}

func TestOffsetToLineColExact(t *testing.T) {
	text := []byte("abc\ndef\nghi")
	sm := New(text)
	cases := []struct {
		offset int
		want   Position
	}{
		{0, Position{0, 0}},
		{3, Position{0, 3}},
		{4, Position{1, 0}},
		{7, Position{1, 3}},
		{8, Position{2, 0}},
		{11, Position{2, 3}},
	}
	for _, c := range cases {
		if got := sm.OffsetToLineCol(c.offset); got != c.want {
			t.Errorf("OffsetToLineCol(%d) = %+v, want %+v", c.offset, got, c.want)
		}
	}
}

func TestLineColToOffsetRoundTrip(t *testing.T) {
	text := []byte("hello\nworld\n")
	sm := New(text)
	for off := 0; off <= len(text); off++ {
		pos := sm.OffsetToLineCol(off)
		back := sm.LineColToOffset(pos)
		if back != off {
			t.Errorf("round trip failed for offset %d: got pos %+v -> %d", off, pos, back)
		}
	}
}

func TestEmptyDocumentRange(t *testing.T) {
	sm := New(nil)
	r := sm.RangeFromOffsets(0, 0)
	if r != EmptyRange {
		t.Errorf("empty document range = %+v, want %+v", r, EmptyRange)
	}
}

func TestOutOfRangeClamping(t *testing.T) {
	text := []byte("abc")
	sm := New(text)
	pos := sm.OffsetToLineCol(1000)
	if pos.Line != 0 || pos.Column != 3 {
		t.Errorf("expected clamp to end of text, got %+v", pos)
	}
}
