package dfa

import (
	"encoding/binary"
	"errors"
	"testing"
)

// buildBlob constructs a DFA blob by hand for testing: transitions not
// set explicitly default to the dead state.
func buildBlob(t *testing.T, semantics Semantics, numStates, start uint32, accepting []uint32, edges map[[2]uint32]uint32) []byte {
	t.Helper()

	buf := make([]byte, 0, 15+int((numStates+7)/8)+int(numStates)*256*4)
	buf = append(buf, magic[:]...)
	var tmp2 [2]byte
	binary.LittleEndian.PutUint16(tmp2[:], formatVersion)
	buf = append(buf, tmp2[:]...)
	buf = append(buf, byte(semantics))
	var tmp4 [4]byte
	binary.LittleEndian.PutUint32(tmp4[:], numStates)
	buf = append(buf, tmp4[:]...)
	binary.LittleEndian.PutUint32(tmp4[:], start)
	buf = append(buf, tmp4[:]...)

	bitmap := make([]byte, (numStates+7)/8)
	for _, s := range accepting {
		bitmap[s/8] |= 1 << (s % 8)
	}
	buf = append(buf, bitmap...)

	table := make([]uint32, int(numStates)*256)
	for i := range table {
		table[i] = deadState
	}
	for k, v := range edges {
		table[int(k[0])*256+int(k[1])] = v
	}
	for _, v := range table {
		binary.LittleEndian.PutUint32(tmp4[:], v)
		buf = append(buf, tmp4[:]...)
	}
	return buf
}

func TestScanForwardLiteral(t *testing.T) {
	// Pattern "ab": state0 -a-> state1 -b-> state2 (accept, dead after).
	blob := buildBlob(t, LeftmostFirst, 3, 0, []uint32{2}, map[[2]uint32]uint32{
		{0, 'a'}: 1,
		{1, 'b'}: 2,
	})
	d, err := Decode(blob)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	end, ok := ScanForward(d, []byte("xxabxx"), 2)
	if !ok || end != 4 {
		t.Errorf("ScanForward() = (%d, %v), want (4, true)", end, ok)
	}

	_, ok = ScanForward(d, []byte("xxacxx"), 2)
	if ok {
		t.Errorf("ScanForward() on non-matching input: want no match")
	}
}

func TestScanForwardLeftmostLongest(t *testing.T) {
	// Pattern "a+": state0 -a-> state1(accept) -a-> state1(accept).
	blob := buildBlob(t, LeftmostLongest, 2, 0, []uint32{1}, map[[2]uint32]uint32{
		{0, 'a'}: 1,
		{1, 'a'}: 1,
	})
	d, err := Decode(blob)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	end, ok := ScanForward(d, []byte("aaab"), 0)
	if !ok || end != 3 {
		t.Errorf("ScanForward() = (%d, %v), want (3, true)", end, ok)
	}
}

func TestScanBackward(t *testing.T) {
	// Reversed pattern for "ab" read backward: consume 'b' then 'a'.
	blob := buildBlob(t, LeftmostFirst, 3, 0, []uint32{2}, map[[2]uint32]uint32{
		{0, 'b'}: 1,
		{1, 'a'}: 2,
	})
	d, err := Decode(blob)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	start, ok := ScanBackward(d, []byte("xxabxx"), 4)
	if !ok || start != 2 {
		t.Errorf("ScanBackward() = (%d, %v), want (2, true)", start, ok)
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := Decode([]byte("short")); !errors.Is(err, ErrDfaFormatError) {
		t.Errorf("Decode() on short blob: error = %v, want ErrDfaFormatError", err)
	}

	blob := buildBlob(t, LeftmostFirst, 1, 0, nil, nil)
	blob[0] = 'X'
	if _, err := Decode(blob); !errors.Is(err, ErrDfaFormatError) {
		t.Errorf("Decode() with bad magic: error = %v, want ErrDfaFormatError", err)
	}

	blob2 := buildBlob(t, LeftmostFirst, 1, 0, nil, nil)
	binary.LittleEndian.PutUint16(blob2[4:6], 99)
	if _, err := Decode(blob2); !errors.Is(err, ErrDfaFormatError) {
		t.Errorf("Decode() with unknown version: error = %v, want ErrDfaFormatError", err)
	}
}
