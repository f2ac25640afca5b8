package utils

import (
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

const (
	MessageVersion byte = 0x01

	NoteMessageKind       byte = 'N'
	RedemptionMessageKind byte = 'R'

	// version || kind || issuer || recipient || amount || timestamp
	CanonicalMessageLength = 2 + 2*CompressedPubKeyLength + 8 + 8
)

// NoteMessage is the byte string an issuer signs to create a note.
func NoteMessage(issuerPk, recipientPk []byte, amount, timestamp uint64) []byte {
	return canonicalMessage(NoteMessageKind, issuerPk, recipientPk, amount, timestamp)
}

// RedemptionMessage is the byte string the issuer or the recipient signs to
// authorize a redemption. The kind byte keeps it distinct from a note message
// with the same terms.
func RedemptionMessage(issuerPk, recipientPk []byte, amount, timestamp uint64) []byte {
	return canonicalMessage(RedemptionMessageKind, issuerPk, recipientPk, amount, timestamp)
}

// RedemptionId identifies a redemption request by its canonical message.
func RedemptionId(redemptionMessage []byte) string {
	sum := blake2b.Sum256(redemptionMessage)
	return hex.EncodeToString(sum[:])
}

func canonicalMessage(kind byte, issuerPk, recipientPk []byte, amount, timestamp uint64) []byte {
	msg := make([]byte, 0, CanonicalMessageLength)
	msg = append(msg, MessageVersion, kind)
	msg = append(msg, issuerPk...)
	msg = append(msg, recipientPk...)
	msg = binary.BigEndian.AppendUint64(msg, amount)
	msg = binary.BigEndian.AppendUint64(msg, timestamp)
	return msg
}
