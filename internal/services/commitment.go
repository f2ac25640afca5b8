package services

import (
	"context"
	"encoding/hex"
	"net/http"

	"github.com/bitmark-inc/bitmarkd/merkle"
	"github.com/rs/zerolog/log"

	"github.com/basisledger/iou-ledger-service/internal/commitment"
	"github.com/basisledger/iou-ledger-service/internal/db"
	"github.com/basisledger/iou-ledger-service/internal/db/model"
	"github.com/basisledger/iou-ledger-service/internal/types"
)

type CommitmentPublic struct {
	RootDigest string `json:"root_digest"`
	NoteCount  int    `json:"note_count"`
}

type ProofStepPublic struct {
	Digest string `json:"digest"`
	// left or right of the running digest
	Position string `json:"position"`
}

type NoteProofPublic struct {
	IssuerPkHex     string            `json:"issuer_pubkey"`
	RecipientPkHex  string            `json:"recipient_pubkey"`
	OriginalAmount  uint64            `json:"original_amount"`
	RemainingAmount uint64            `json:"remaining_amount"`
	LeafDigest      string            `json:"leaf_digest"`
	LeafIndex       int               `json:"leaf_index"`
	NoteCount       int               `json:"note_count"`
	Path            []ProofStepPublic `json:"path"`
	RootDigest      string            `json:"root_digest"`
}

func digestHex(d merkle.Digest) string {
	return hex.EncodeToString(d[:])
}

func leafOf(note *model.NoteDocument) commitment.Leaf {
	return commitment.Leaf{
		IssuerPkHex:     note.IssuerPkHex,
		RecipientPkHex:  note.RecipientPkHex,
		OriginalAmount:  note.OriginalAmount,
		RemainingAmount: note.RemainingAmount,
	}
}

// loadCommitment rebuilds the tree from the stored notes the first time it
// is needed. commitMu must be held.
func (s *Services) loadCommitment(ctx context.Context) (*commitment.Tree, error) {
	if s.commitment != nil {
		return s.commitment, nil
	}
	notes, err := s.DbClient.FindAllNotes(ctx)
	if err != nil {
		return nil, err
	}
	tree := commitment.New()
	for i := range notes {
		if err := tree.Put(leafOf(&notes[i])); err != nil {
			return nil, err
		}
	}
	s.commitment = tree
	log.Ctx(ctx).Info().Int("notes", tree.Count()).Str("root", digestHex(tree.Root())).Msg("note commitment loaded")
	return tree, nil
}

// commitNote puts leaf into the commitment and hands the resulting
// COMMITMENT event to write, which must persist it with the note change.
// The leaf is rolled back if write fails.
func (s *Services) commitNote(ctx context.Context, leaf commitment.Leaf, write func(event *model.EventDocument) error) error {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	tree, err := s.loadCommitment(ctx)
	if err != nil {
		return err
	}
	previous, existed := tree.Get(leaf.IssuerPkHex, leaf.RecipientPkHex)
	if err := tree.Put(leaf); err != nil {
		return err
	}
	event, err := db.NewCommitmentEvent(leaf.IssuerPkHex, leaf.RecipientPkHex, digestHex(tree.Root()), tree.Count())
	if err == nil {
		err = write(event)
	}
	if err != nil {
		if existed {
			tree.Put(previous) // nolint:errcheck
		} else {
			tree.Remove(leaf.IssuerPkHex, leaf.RecipientPkHex)
		}
		return err
	}
	return nil
}

// refreshLeaf replaces a leaf with the note as stored.
func (s *Services) refreshLeaf(ctx context.Context, issuerPkHex, recipientPkHex string) {
	note, err := s.DbClient.FindNote(ctx, issuerPkHex, recipientPkHex)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to reload note for the commitment")
		return
	}
	s.commitMu.Lock()
	defer s.commitMu.Unlock()
	if tree, err := s.loadCommitment(ctx); err == nil {
		tree.Put(leafOf(note)) // nolint:errcheck
	}
}

// Commitment returns the current root over all notes.
func (s *Services) Commitment(ctx context.Context) (*CommitmentPublic, *types.Error) {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	tree, err := s.loadCommitment(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to load the note commitment")
		return nil, types.NewInternalServiceError(err)
	}
	return &CommitmentPublic{
		RootDigest: digestHex(tree.Root()),
		NoteCount:  tree.Count(),
	}, nil
}

// ProveNote returns the inclusion proof of a note against the current root.
func (s *Services) ProveNote(ctx context.Context, issuerPkHex, recipientPkHex string) (*NoteProofPublic, *types.Error) {
	issuerPk, err := parsePubKey("issuer_pubkey", issuerPkHex)
	if err != nil {
		return nil, err
	}
	recipientPk, err := parsePubKey("recipient_pubkey", recipientPkHex)
	if err != nil {
		return nil, err
	}

	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	tree, loadErr := s.loadCommitment(ctx)
	if loadErr != nil {
		log.Ctx(ctx).Error().Err(loadErr).Msg("failed to load the note commitment")
		return nil, types.NewInternalServiceError(loadErr)
	}
	proof, ok := tree.Prove(hexKey(issuerPk), hexKey(recipientPk))
	if !ok {
		return nil, types.NewErrorWithMsg(http.StatusNotFound, types.NoteNotFound, "note not found")
	}
	leafDigest, digestErr := proof.Leaf.Digest()
	if digestErr != nil {
		return nil, types.NewInternalServiceError(digestErr)
	}

	path := make([]ProofStepPublic, 0, len(proof.Path))
	for _, step := range proof.Path {
		position := "right"
		if step.Left {
			position = "left"
		}
		path = append(path, ProofStepPublic{Digest: digestHex(step.Sibling), Position: position})
	}
	return &NoteProofPublic{
		IssuerPkHex:     proof.Leaf.IssuerPkHex,
		RecipientPkHex:  proof.Leaf.RecipientPkHex,
		OriginalAmount:  proof.Leaf.OriginalAmount,
		RemainingAmount: proof.Leaf.RemainingAmount,
		LeafDigest:      digestHex(leafDigest),
		LeafIndex:       proof.LeafIndex,
		NoteCount:       proof.LeafCount,
		Path:            path,
		RootDigest:      digestHex(proof.Root),
	}, nil
}
