package utf8dfa

import "testing"

func decodeAll(t *testing.T, in []byte) []rune {
	t.Helper()
	var d Decoder
	var out []rune
	i := 0
	for i < len(in) {
		res, r := d.Feed(in[i])
		switch res {
		case Done:
			out = append(out, r)
			i++
		case Continue:
			i++
		case Error:
			out = append(out, ReplacementChar)
			i++
		case Rewind:
			out = append(out, ReplacementChar)
			// caller must re-feed the same byte; do not advance i.
		}
	}
	return out
}

func TestASCIIRoundTrip(t *testing.T) {
	in := []byte("Hello, world! 0123456789")
	got := decodeAll(t, in)
	if len(got) != len(in) {
		t.Fatalf("got %d runes, want %d", len(got), len(in))
	}
	for i, b := range in {
		if got[i] != rune(b) {
			t.Errorf("rune %d = %q, want %q", i, got[i], rune(b))
		}
	}
}

func TestMultiByteRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want rune
	}{
		{"2-byte", []byte{0xC3, 0xA9}, 0x00E9},           // é
		{"3-byte", []byte{0xE2, 0x82, 0xAC}, 0x20AC},      // €
		{"3-byte boundary low", []byte{0xE0, 0xA0, 0x80}, 0x0800},
		{"4-byte", []byte{0xF0, 0x9F, 0x98, 0x80}, 0x1F600}, // emoji
		{"4-byte max", []byte{0xF4, 0x8F, 0xBF, 0xBF}, 0x10FFFF},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := decodeAll(t, c.in)
			if len(got) != 1 || got[0] != c.want {
				t.Fatalf("got %v, want [%U]", got, c.want)
			}
		})
	}
}

func TestOverlongRejected(t *testing.T) {
	// 0xC0 0x80 is an overlong encoding of NUL and must never decode.
	got := decodeAll(t, []byte{0xC0, 0x80})
	for _, r := range got {
		if r != ReplacementChar {
			t.Errorf("overlong sequence produced %U, want only replacement characters", r)
		}
	}
}

func TestSurrogateRejected(t *testing.T) {
	// 0xED 0xA0 0x80 would encode U+D800, a lone surrogate; E0's sibling
	// lead ED must refuse continuation bytes >= 0xA0.
	got := decodeAll(t, []byte{0xED, 0xA0, 0x80})
	for _, r := range got {
		if r == 0xD800 {
			t.Errorf("decoded a surrogate code point")
		}
	}
}

func TestResyncAfterInvalidLead(t *testing.T) {
	// 0xC0 can never start a sequence; the byte after it must decode
	// independently and correctly.
	got := decodeAll(t, []byte{0xC0, 'A'})
	want := []rune{ReplacementChar, 'A'}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestRewindResynchronizesOnNewLead(t *testing.T) {
	// A 3-byte lead (E0) followed immediately by a fresh 2-byte lead
	// (C2 A9) must not lose the second sequence.
	var d Decoder
	res, _ := d.Feed(0xE0)
	if res != Continue {
		t.Fatalf("feed E0: got %v, want Continue", res)
	}
	res, _ = d.Feed(0xC2)
	if res != Rewind {
		t.Fatalf("feed C2 mid-sequence: got %v, want Rewind", res)
	}
	res, _ = d.Feed(0xC2) // caller re-feeds per the Rewind contract
	if res != Continue {
		t.Fatalf("re-feed C2: got %v, want Continue", res)
	}
	res, r := d.Feed(0xA9)
	if res != Done || r != 0x00A9 {
		t.Fatalf("feed A9: got (%v, %U), want (Done, U+00A9)", res, r)
	}
}

func TestPendingReflectsMidSequence(t *testing.T) {
	var d Decoder
	if d.Pending() {
		t.Fatal("fresh decoder reports Pending")
	}
	d.Feed(0xE2)
	if !d.Pending() {
		t.Fatal("decoder mid 3-byte sequence does not report Pending")
	}
	d.Reset()
	if d.Pending() {
		t.Fatal("Reset did not clear Pending")
	}
}
