package kernel

import (
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"

	"golang.org/x/crypto/blake2b"
)

// recipeSize is the digest length in bytes. 20 bytes gives the same
// 40 hex character tokens clients already store.
const recipeSize = 20

// Recipe accumulates the construction history of a solid into a
// content digest. Backends build one per operation: the op name, its
// scalar arguments, and the digests of its operand solids.
//
//	NewRecipe("difference").Child(a).Child(b).Sum()
type Recipe struct {
	h hash.Hash
}

// NewRecipe starts a digest for the named operation.
func NewRecipe(op string) *Recipe {
	h, err := blake2b.New(recipeSize, nil)
	if err != nil {
		// Only reachable with an invalid size constant.
		panic("kernel: blake2b: " + err.Error())
	}
	r := &Recipe{h: h}
	r.str(op)
	return r
}

// Float mixes scalar arguments into the digest. Negative zero is folded
// into zero so that -0 and 0 produce the same token.
func (r *Recipe) Float(vs ...float64) *Recipe {
	var buf [8]byte
	for _, v := range vs {
		if v == 0 {
			v = 0
		}
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(v))
		r.h.Write(buf[:])
	}
	return r
}

// Int mixes an integer argument into the digest.
func (r *Recipe) Int(v int) *Recipe {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(int64(v)))
	r.h.Write(buf[:])
	return r
}

// Child mixes the digest of an operand solid.
func (r *Recipe) Child(digest string) *Recipe {
	r.str(digest)
	return r
}

// Sum returns the hex digest.
func (r *Recipe) Sum() string {
	return hex.EncodeToString(r.h.Sum(nil))
}

// str writes a length-prefixed string so that adjacent fields cannot
// run together.
func (r *Recipe) str(s string) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(len(s)))
	r.h.Write(buf[:])
	r.h.Write([]byte(s))
}
