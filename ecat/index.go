package ecat

import (
	"crypto/rand"
)

// randomIndex draws a transfer index from [indexMin, indexMax). The index
// correlates a request with its response; the device echoes it back in the
// same exchange.
//
// This is the default index source; tests inject a deterministic one via
// WithIndexSource.
func randomIndex() uint8 {
	var buf [1]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand never fails on supported platforms; fall back to the
		// lowest valid index rather than aborting the exchange.
		return indexMin
	}
	return indexMin + buf[0]%(indexMax-indexMin)
}
