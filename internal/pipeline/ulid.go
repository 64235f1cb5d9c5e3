package pipeline

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// Job IDs are ULIDs: 26-character Crockford Base32 strings with a millisecond
// timestamp prefix, so listings sort by submission time.

var (
	ulidMu  sync.Mutex
	lastTS  uint64
	lastSeq uint16
)

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// NewJobID returns a fresh ULID. IDs generated within the same millisecond
// carry an increasing sequence so they still sort in creation order.
func NewJobID() string {
	ulidMu.Lock()
	defer ulidMu.Unlock()

	ts := uint64(time.Now().UnixMilli())
	if ts == lastTS {
		lastSeq++
	} else {
		lastTS = ts
		lastSeq = 0
	}

	var b [16]byte
	// Timestamp in first 6 bytes (big-endian 48-bit).
	b[0] = byte(ts >> 40)
	b[1] = byte(ts >> 32)
	b[2] = byte(ts >> 24)
	b[3] = byte(ts >> 16)
	b[4] = byte(ts >> 8)
	b[5] = byte(ts)
	// Random in remaining 10 bytes, sequence in bytes 6-7 for same-ms order.
	rand.Read(b[6:])
	binary.BigEndian.PutUint16(b[6:8], lastSeq)

	return encodeULID(b)
}

// encodeULID renders 128 bits as 26 Crockford Base32 characters, reading
// MSB-first in 5-bit groups with two zero pad bits in front.
func encodeULID(b [16]byte) string {
	var out [26]byte
	bitPos := -2
	for i := range out {
		v := 0
		for k := 0; k < 5; k++ {
			v <<= 1
			idx := bitPos + k
			if idx >= 0 {
				v |= int(b[idx/8]>>(7-idx%8)) & 1
			}
		}
		out[i] = crockford[v&31]
		bitPos += 5
	}
	return string(out[:])
}
