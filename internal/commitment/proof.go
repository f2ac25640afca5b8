package commitment

import (
	"github.com/bitmark-inc/bitmarkd/merkle"
)

// ProofStep is one sibling on the path from a leaf to the root.
type ProofStep struct {
	Sibling merkle.Digest
	// Left is set when the sibling is hashed in front of the running digest.
	Left bool
}

// Proof shows that a leaf is part of the tree with the given root.
type Proof struct {
	Leaf      Leaf
	LeafIndex int
	LeafCount int
	Path      []ProofStep
	Root      merkle.Digest
}

// Prove builds the inclusion proof of a note's leaf. ok is false when the
// note has no leaf.
func (t *Tree) Prove(issuerPkHex, recipientPkHex string) (proof *Proof, ok bool) {
	node, index := t.index.Search(newNoteKey(issuerPkHex, recipientPkHex))
	if node == nil {
		return nil, false
	}

	leaves := t.leafDigests()
	levels := merkle.FullMerkleTree(leaves)

	// levels holds every tree level back to back, an odd node is paired
	// with itself
	var path []ProofStep
	offset, width, i := 0, len(leaves), index
	for width > 1 {
		sibling := i ^ 1
		if sibling >= width {
			sibling = i
		}
		path = append(path, ProofStep{
			Sibling: levels[offset+sibling],
			Left:    i%2 == 1,
		})
		offset += width
		width = (width + 1) / 2
		i /= 2
	}

	return &Proof{
		Leaf:      node.Value().(*entry).leaf,
		LeafIndex: index,
		LeafCount: len(leaves),
		Path:      path,
		Root:      levels[len(levels)-1],
	}, true
}

// Verify recomputes the root from the leaf and the path.
func (p *Proof) Verify() bool {
	digest, err := p.Leaf.Digest()
	if err != nil {
		return false
	}
	for _, step := range p.Path {
		if step.Left {
			digest = merkle.NewDigest(append(step.Sibling[:], digest[:]...))
		} else {
			digest = merkle.NewDigest(append(digest[:], step.Sibling[:]...))
		}
	}
	return digest == p.Root
}
