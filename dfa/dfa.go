// Package dfa decodes precompiled deterministic finite automaton tables
// and executes them forward or backward over a byte slice. It performs
// no regex compilation: every DFA arrives as an already-compiled blob
// produced by an external compile-time tool.
package dfa

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrDfaFormatError is returned when a DFA blob is malformed or carries
// an unknown format version.
var ErrDfaFormatError = errors.New("dfa: malformed or unsupported blob")

var magic = [4]byte{'Z', 'K', 'D', '1'}

const formatVersion = 1

// deadState marks a transition with no outgoing edge: scanning stops
// immediately when a state reaches it.
const deadState = 0xFFFFFFFF

// Semantics selects how ScanForward/ScanBackward resolve ambiguity
// between multiple accepting positions reached during a single scan.
type Semantics byte

const (
	// LeftmostFirst returns the first position at which the automaton
	// accepts.
	LeftmostFirst Semantics = 0
	// LeftmostLongest keeps scanning until the automaton dies or the
	// input is exhausted, returning the last accepting position seen.
	LeftmostLongest Semantics = 1
)

// DFA is a decoded, table-driven automaton over the full byte alphabet.
type DFA struct {
	Semantics  Semantics
	NumStates  uint32
	StartState uint32
	accepting  []byte   // bitmap, ceil(NumStates/8) bytes
	table      []uint32 // NumStates * 256, row-major
}

func (d *DFA) isAccepting(state uint32) bool {
	if state >= d.NumStates {
		return false
	}
	return d.accepting[state/8]&(1<<(state%8)) != 0
}

func (d *DFA) next(state uint32, b byte) uint32 {
	return d.table[uint64(state)*256+uint64(b)]
}

// Decode parses a self-describing DFA blob.
//
// Layout: 4-byte magic, 2-byte little-endian version, 1-byte semantics
// tag, 4-byte little-endian state count, 4-byte little-endian start
// state id, a ceil(states/8)-byte accepting-state bitmap, then a
// states*256 little-endian uint32 transition table (state-major,
// byte-minor). A transition value of 0xFFFFFFFF means "no edge" (dead).
func Decode(blob []byte) (*DFA, error) {
	const headerLen = 4 + 2 + 1 + 4 + 4
	if len(blob) < headerLen {
		return nil, fmt.Errorf("%w: blob shorter than header", ErrDfaFormatError)
	}
	if [4]byte(blob[0:4]) != magic {
		return nil, fmt.Errorf("%w: bad magic", ErrDfaFormatError)
	}
	version := binary.LittleEndian.Uint16(blob[4:6])
	if version != formatVersion {
		return nil, fmt.Errorf("%w: unknown version %d", ErrDfaFormatError, version)
	}
	semantics := Semantics(blob[6])
	if semantics != LeftmostFirst && semantics != LeftmostLongest {
		return nil, fmt.Errorf("%w: unknown semantics tag %d", ErrDfaFormatError, semantics)
	}
	numStates := binary.LittleEndian.Uint32(blob[7:11])
	startState := binary.LittleEndian.Uint32(blob[11:15])
	if startState >= numStates {
		return nil, fmt.Errorf("%w: start state out of range", ErrDfaFormatError)
	}

	off := headerLen
	bitmapLen := int((numStates + 7) / 8)
	if off+bitmapLen > len(blob) {
		return nil, fmt.Errorf("%w: truncated accepting bitmap", ErrDfaFormatError)
	}
	accepting := blob[off : off+bitmapLen]
	off += bitmapLen

	tableLen := int(numStates) * 256
	if off+tableLen*4 > len(blob) {
		return nil, fmt.Errorf("%w: truncated transition table", ErrDfaFormatError)
	}
	table := make([]uint32, tableLen)
	for i := 0; i < tableLen; i++ {
		table[i] = binary.LittleEndian.Uint32(blob[off+i*4 : off+i*4+4])
	}

	return &DFA{
		Semantics:  semantics,
		NumStates:  numStates,
		StartState: startState,
		accepting:  accepting,
		table:      table,
	}, nil
}

// ScanForward executes dfa over data starting at position start,
// returning the end index of an accepted span bytes[start:end_index].
// Under LeftmostFirst semantics it returns the first accepting
// position reached; under LeftmostLongest it returns the last
// accepting position reached before the automaton dies or input is
// exhausted. ok is false if no accepting position was ever reached.
func ScanForward(d *DFA, data []byte, start int) (endIndex int, ok bool) {
	state := d.StartState
	best := -1

	check := func(pos int) bool {
		if !d.isAccepting(state) {
			return false
		}
		if d.Semantics == LeftmostFirst {
			endIndex, ok = pos, true
			return true
		}
		best = pos
		return false
	}
	if check(start) {
		return
	}

	pos := start
	for pos < len(data) {
		state = d.next(state, data[pos])
		pos++
		if state == deadState {
			break
		}
		if check(pos) {
			return
		}
	}

	if best >= 0 {
		return best, true
	}
	return 0, false
}

// ScanBackward executes a reversed DFA walking data backward from end,
// returning the earliest start index such that bytes[start_index:end]
// is accepted by the corresponding forward pattern. dfaReversed must
// be compiled over the reverse of that pattern.
func ScanBackward(dfaReversed *DFA, data []byte, end int) (startIndex int, ok bool) {
	state := dfaReversed.StartState
	best := -1

	check := func(pos int) bool {
		if !dfaReversed.isAccepting(state) {
			return false
		}
		if dfaReversed.Semantics == LeftmostFirst {
			startIndex, ok = pos, true
			return true
		}
		best = pos
		return false
	}
	if check(end) {
		return
	}

	pos := end
	for pos > 0 {
		state = dfaReversed.next(state, data[pos-1])
		pos--
		if state == deadState {
			break
		}
		if check(pos) {
			return
		}
	}

	if best >= 0 {
		return best, true
	}
	return 0, false
}
