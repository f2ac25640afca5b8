// Package commitment keeps an authenticated digest over the state of every
// note. Notes are ordered by issuer and recipient key, each note contributes
// one leaf and the root is the Merkle root over the ordered leaves.
//
// A Tree is not safe for concurrent use.
package commitment

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/bitmark-inc/bitmarkd/avl"
	"github.com/bitmark-inc/bitmarkd/merkle"
)

// Leaf is the committed state of one note.
type Leaf struct {
	IssuerPkHex     string
	RecipientPkHex  string
	OriginalAmount  uint64
	RemainingAmount uint64
}

// Digest hashes issuer key ‖ recipient key ‖ original amount ‖ remaining
// amount, amounts as 8 byte big endian.
func (l Leaf) Digest() (merkle.Digest, error) {
	issuer, err := hex.DecodeString(l.IssuerPkHex)
	if err != nil {
		return merkle.Digest{}, fmt.Errorf("invalid issuer key: %w", err)
	}
	recipient, err := hex.DecodeString(l.RecipientPkHex)
	if err != nil {
		return merkle.Digest{}, fmt.Errorf("invalid recipient key: %w", err)
	}
	record := make([]byte, 0, len(issuer)+len(recipient)+16)
	record = append(record, issuer...)
	record = append(record, recipient...)
	record = binary.BigEndian.AppendUint64(record, l.OriginalAmount)
	record = binary.BigEndian.AppendUint64(record, l.RemainingAmount)
	return merkle.NewDigest(record), nil
}

// noteKey orders leaves by issuer then recipient. Keys are fixed length
// lowercase hex, so string order is byte order.
type noteKey string

func newNoteKey(issuerPkHex, recipientPkHex string) noteKey {
	return noteKey(issuerPkHex + recipientPkHex)
}

func (k noteKey) Compare(other interface{}) int {
	return strings.Compare(string(k), string(other.(noteKey)))
}

// entry is the value stored in the index, the digest is cached so that a
// root only hashes the inner levels.
type entry struct {
	leaf   Leaf
	digest merkle.Digest
}

type Tree struct {
	index *avl.Tree
}

func New() *Tree {
	return &Tree{index: avl.New()}
}

// Put inserts the leaf or replaces the leaf of the same note.
func (t *Tree) Put(leaf Leaf) error {
	digest, err := leaf.Digest()
	if err != nil {
		return err
	}
	t.index.Insert(newNoteKey(leaf.IssuerPkHex, leaf.RecipientPkHex), &entry{leaf: leaf, digest: digest})
	return nil
}

// Remove drops the leaf of a note, if present.
func (t *Tree) Remove(issuerPkHex, recipientPkHex string) {
	t.index.Delete(newNoteKey(issuerPkHex, recipientPkHex))
}

func (t *Tree) Get(issuerPkHex, recipientPkHex string) (Leaf, bool) {
	node, _ := t.index.Search(newNoteKey(issuerPkHex, recipientPkHex))
	if node == nil {
		return Leaf{}, false
	}
	return node.Value().(*entry).leaf, true
}

func (t *Tree) Count() int {
	return t.index.Count()
}

// Root returns the Merkle root over all leaves. An empty tree has the zero
// digest.
func (t *Tree) Root() merkle.Digest {
	levels := merkle.FullMerkleTree(t.leafDigests())
	return levels[len(levels)-1]
}

func (t *Tree) leafDigests() []merkle.Digest {
	digests := make([]merkle.Digest, 0, t.index.Count())
	if t.index.IsEmpty() {
		return digests
	}
	for node := t.index.First(); node != nil; node = node.Next() {
		digests = append(digests, node.Value().(*entry).digest)
	}
	return digests
}
