// Package digestcodec writes simulation state into a hash in a fixed,
// platform-independent byte layout.
package digestcodec

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"
	"sort"
)

type Hasher struct {
	h   hash.Hash
	tmp [8]byte
}

func New() *Hasher { return &Hasher{h: sha256.New()} }

func (d *Hasher) U64(v uint64) {
	binary.LittleEndian.PutUint64(d.tmp[:], v)
	d.h.Write(d.tmp[:])
}

func (d *Hasher) I64(v int64) { d.U64(uint64(v)) }
func (d *Hasher) Int(v int)   { d.U64(uint64(int64(v))) }

// F64 hashes the exact bit pattern; -0 and +0 differ.
func (d *Hasher) F64(v float64) { d.U64(math.Float64bits(v)) }

func (d *Hasher) Bool(v bool) {
	b := byte(0)
	if v {
		b = 1
	}
	d.h.Write([]byte{b})
}

// Str is length-prefixed so adjacent strings cannot alias.
func (d *Hasher) Str(s string) {
	d.U64(uint64(len(s)))
	d.h.Write([]byte(s))
}

// IntMap emits a key-sorted encoding, skipping zero values.
func (d *Hasher) IntMap(m map[string]int) {
	keys := make([]string, 0, len(m))
	for k, v := range m {
		if v != 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	d.U64(uint64(len(keys)))
	for _, k := range keys {
		d.Str(k)
		d.Int(m[k])
	}
}

func (d *Hasher) Hex() string { return hex.EncodeToString(d.h.Sum(nil)) }
