package engine

import (
	"github.com/rs/zerolog"

	"github.com/SafeMemoryZone/knight-rider/internal/board"
)

// TTFlag classifies a stored score.
type TTFlag uint8

const (
	TTExact TTFlag = iota // score is the true value
	TTLower               // lower bound from a beta cutoff
	TTUpper               // upper bound, no move raised alpha
)

// clusterSize is the number of probes per bucket.
const clusterSize = 4

// ttEntrySize is the in-memory footprint used when sizing the table.
const ttEntrySize = 16

// TTEntry is one transposition table slot. Full keys are not stored: the top
// 16 bits form a tag, and callers verify a hit by validating the stored move
// against the legal-move list.
type TTEntry struct {
	BestMove board.Move
	Value    Score
	Age      uint16
	KeyTag   uint16
	Depth    int8 // negative marks an empty slot
	Flag     TTFlag
}

func emptyTTEntry() TTEntry {
	return TTEntry{
		Age:    ^uint16(0),
		KeyTag: ^uint16(0),
		Depth:  -1,
		Flag:   TTUpper,
	}
}

// TranspositionTable is a bucketed hash table over a single contiguous
// allocation. It is shared between searches but never accessed by more than
// one search worker at a time.
type TranspositionTable struct {
	table []TTEntry
	age   uint16
	log   zerolog.Logger
}

// NewTranspositionTable allocates a table of the given size in MiB.
func NewTranspositionTable(mb int, log zerolog.Logger) *TranspositionTable {
	tt := &TranspositionTable{log: log}
	tt.Resize(mb)
	return tt
}

// NewSearch ages the table; called once at the start of every root search.
func (tt *TranspositionTable) NewSearch() {
	tt.age++
}

// Clear empties every slot and resets the age.
func (tt *TranspositionTable) Clear() {
	empty := emptyTTEntry()
	for i := range tt.table {
		tt.table[i] = empty
	}
	tt.age = 0
}

// Resize reallocates the table for the given size in MiB, rounded down to a
// whole number of clusters with a floor of clusterSize*1024 entries. The old
// contents are discarded.
func (tt *TranspositionTable) Resize(mb int) {
	capacity := mb * 1024 * 1024 / ttEntrySize
	capacity = (capacity / clusterSize) * clusterSize
	if capacity < clusterSize*1024 {
		capacity = clusterSize * 1024
	}

	tt.table = make([]TTEntry, capacity)
	tt.Clear()
	tt.log.Debug().Int("mb", mb).Int("entries", capacity).Msg("transposition table resized")
}

func (tt *TranspositionTable) clusterBase(key uint64) int {
	numClusters := uint64(len(tt.table) / clusterSize)
	return int(key%numClusters) * clusterSize
}

func keyTag(key uint64) uint16 {
	return uint16(key >> 48)
}

// Probe returns the first occupied slot of key's bucket with a matching tag.
func (tt *TranspositionTable) Probe(key uint64) (TTEntry, bool) {
	if len(tt.table) == 0 {
		return TTEntry{}, false
	}
	base := tt.clusterBase(key)
	tag := keyTag(key)
	for i := 0; i < clusterSize; i++ {
		entry := tt.table[base+i]
		if entry.Depth >= 0 && entry.KeyTag == tag {
			return entry, true
		}
	}
	return TTEntry{}, false
}

func flagPriority(f TTFlag) int {
	switch f {
	case TTExact:
		return 2
	case TTLower:
		return 1
	default:
		return 0
	}
}

// Store writes an entry into key's bucket. A same-tag incumbent is replaced
// unless it carries a strictly more informative flag at greater depth; then
// the first empty slot is used; otherwise the victim maximises
// (127-depth)*256 + age distance, preferring shallow and old entries.
func (tt *TranspositionTable) Store(key uint64, depth int, value Score, flag TTFlag, bestMove board.Move) {
	if len(tt.table) == 0 {
		return
	}
	base := tt.clusterBase(key)
	tag := keyTag(key)

	emptyIdx, sameIdx := -1, -1
	for i := 0; i < clusterSize; i++ {
		entry := &tt.table[base+i]
		if entry.Depth < 0 && emptyIdx < 0 {
			emptyIdx = i
		}
		if entry.KeyTag == tag {
			sameIdx = i
			break
		}
	}

	var victimIdx int
	switch {
	case sameIdx >= 0:
		existing := &tt.table[base+sameIdx]
		incumbentBetterFlag := flagPriority(existing.Flag) > flagPriority(flag)
		if incumbentBetterFlag && depth < int(existing.Depth) {
			return // keep the deeper, more informative entry
		}
		victimIdx = sameIdx
	case emptyIdx >= 0:
		victimIdx = emptyIdx
	default:
		bestScore := -1
		for i := 0; i < clusterSize; i++ {
			e := &tt.table[base+i]
			repScore := (127-int(e.Depth))*256 + int(uint16(tt.age-e.Age))
			if repScore > bestScore {
				bestScore = repScore
				victimIdx = i
			}
		}
	}

	v := &tt.table[base+victimIdx]
	v.BestMove = bestMove
	v.Value = value
	v.Age = tt.age
	v.KeyTag = tag
	v.Depth = int8(depth)
	v.Flag = flag
}
