// Package hrw implements Rendezvous (highest-random-weight) hashing.
// It is used to pin keys to event loops deterministically: every caller
// that hashes the same key over the same node set picks the same node.
package hrw

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// Best returns the node with the highest HRW score for key.
// seed personalizes the hash so unrelated node groups don't correlate.
// ok is false when nodes is empty.
func Best(key string, nodes []string, seed string) (best string, ok bool) {
	if len(nodes) == 0 {
		return best, false
	}

	var top uint64
	keyB := []byte(key)
	for _, id := range nodes {
		if s := score(keyB, id, seed); !ok || s > top {
			top = s
			best = id
			ok = true
		}
	}
	return best, true
}

func score(key []byte, nodeID, seed string) uint64 {
	// 8-byte digest => uint64 score
	h, _ := blake2b.New(8, nil)

	if seed != "" {
		_, _ = h.Write([]byte(seed))
		_, _ = h.Write([]byte{0})
	}
	_, _ = h.Write(key)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(nodeID))

	var sum [8]byte
	copy(sum[:], h.Sum(nil))
	return binary.BigEndian.Uint64(sum[:])
}
