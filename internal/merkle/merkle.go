// Package merkle builds Merkle roots over a list of transaction
// hashes, the structure a block header's merkle_root commits to.
package merkle

import (
	"github.com/satoshiforge/chainprim/internal/bitcoinerrors"
	"github.com/satoshiforge/chainprim/internal/bitcoinutil"
)

// ParentHash combines two child hashes into their parent: hash256 of
// their concatenation.
func ParentHash(left, right []byte) []byte {
	return bitcoinutil.Hash256(append(append([]byte{}, left...), right...))
}

// ParentLevel pairs hashes sequentially into the next level up,
// duplicating the last hash when the level has odd length.
func ParentLevel(hashes [][]byte) ([][]byte, error) {
	if len(hashes) == 0 {
		return nil, bitcoinerrors.Precondition("merkle level must not be empty")
	}

	level := hashes
	if len(level)%2 == 1 {
		level = append(append([][]byte{}, level...), level[len(level)-1])
	}

	parentLevel := make([][]byte, 0, len(level)/2)
	for i := 0; i < len(level); i += 2 {
		parentLevel = append(parentLevel, ParentHash(level[i], level[i+1]))
	}

	return parentLevel, nil
}

// Root computes the Merkle root of hashes by repeatedly taking
// parent levels until a single hash remains.
func Root(hashes [][]byte) ([]byte, error) {
	if len(hashes) == 0 {
		return nil, bitcoinerrors.Precondition("merkle root requires at least one hash")
	}

	level := hashes
	for len(level) > 1 {
		next, err := ParentLevel(level)
		if err != nil {
			return nil, err
		}
		level = next
	}

	return level[0], nil
}
