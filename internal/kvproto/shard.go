package kvproto

import "fmt"

// Shard is a closed integer interval [Lower, Upper] over the key-id space.
// A server's shard list is kept normalized: sorted ascending by Lower and
// non-overlapping. Adjacent intervals need not be coalesced.
type Shard struct {
	Lower int `json:"lower"`
	Upper int `json:"upper"`
}

// Valid reports whether the shard is well-formed (non-empty, Lower <= Upper).
func (s Shard) Valid() bool {
	return s.Lower <= s.Upper
}

// Contains reports whether id falls within the shard's closed interval.
func (s Shard) Contains(id int) bool {
	return id >= s.Lower && id <= s.Upper
}

// Overlaps reports whether s and other share at least one integer.
func (s Shard) Overlaps(other Shard) bool {
	return s.Lower <= other.Upper && other.Lower <= s.Upper
}

func (s Shard) String() string {
	return fmt.Sprintf("[%d,%d]", s.Lower, s.Upper)
}

// Subtract removes the interval t from s, classifying the relationship per
// the shardmaster's Move algorithm (spec.md section 4.1):
//
//	NO_OVERLAP            -> s unchanged
//	OVERLAP_START         -> [t.Upper+1, s.Upper]
//	OVERLAP_END           -> [s.Lower, t.Lower-1]
//	COMPLETELY_CONTAINS   -> [s.Lower, t.Lower-1], [t.Upper+1, s.Upper]
//	COMPLETELY_CONTAINED  -> s dropped entirely
//
// The returned slice holds zero, one, or two shards depending on the case.
func (s Shard) Subtract(t Shard) []Shard {
	if !s.Overlaps(t) {
		return []Shard{s}
	}
	if t.Lower <= s.Lower && t.Upper >= s.Upper {
		// COMPLETELY_CONTAINED: t swallows s whole.
		return nil
	}
	if t.Lower <= s.Lower {
		// OVERLAP_START: t covers s's low end but not all of it.
		return []Shard{{Lower: t.Upper + 1, Upper: s.Upper}}
	}
	if t.Upper >= s.Upper {
		// OVERLAP_END: t covers s's high end but not all of it.
		return []Shard{{Lower: s.Lower, Upper: t.Lower - 1}}
	}
	// COMPLETELY_CONTAINS: t sits strictly inside s, splitting it in two.
	return []Shard{
		{Lower: s.Lower, Upper: t.Lower - 1},
		{Lower: t.Upper + 1, Upper: s.Upper},
	}
}
