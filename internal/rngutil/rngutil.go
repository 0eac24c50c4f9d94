// Package rngutil derives reproducible pseudo-random streams from a base
// seed plus an ordered sequence of string tags (style name, package index,
// sub-stage). Derivation goes through HMAC-SHA256 keyed by the base seed so
// distinct tag sequences yield statistically independent streams; naive
// seed arithmetic would correlate streams across styles and packages.
package rngutil

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand/v2"
)

// ErrInvalidSeed is returned for seeds outside the accepted range.
var ErrInvalidSeed = errors.New("base seed must be non-negative")

// Derive returns an independent generator for the given base seed and tag
// sequence. The same (seed, tags) always produces the same stream, and each
// call returns a fresh generator instance so concurrent realizations never
// share state.
func Derive(baseSeed int64, tags ...string) (*rand.Rand, error) {
	s1, s2, err := deriveState(baseSeed, tags...)
	if err != nil {
		return nil, err
	}
	return rand.New(rand.NewPCG(s1, s2)), nil
}

// DeriveSeed collapses a (seed, tags) derivation into a single child seed,
// used when a sub-stage needs a numeric seed of its own (e.g. per-package
// seeds in stacked mode).
func DeriveSeed(baseSeed int64, tags ...string) (int64, error) {
	s1, _, err := deriveState(baseSeed, tags...)
	if err != nil {
		return 0, err
	}
	// Mask the sign bit so child seeds stay valid base seeds.
	return int64(s1 & 0x7fffffffffffffff), nil
}

func deriveState(baseSeed int64, tags ...string) (uint64, uint64, error) {
	if baseSeed < 0 {
		return 0, 0, fmt.Errorf("%w: got %d", ErrInvalidSeed, baseSeed)
	}
	key := make([]byte, 8)
	binary.LittleEndian.PutUint64(key, uint64(baseSeed))
	mac := hmac.New(sha256.New, key)
	for _, tag := range tags {
		// Length-prefix each tag so ("ab","c") and ("a","bc") cannot collide.
		var n [4]byte
		binary.LittleEndian.PutUint32(n[:], uint32(len(tag)))
		mac.Write(n[:])
		mac.Write([]byte(tag))
	}
	sum := mac.Sum(nil)
	return binary.LittleEndian.Uint64(sum[:8]), binary.LittleEndian.Uint64(sum[8:16]), nil
}
