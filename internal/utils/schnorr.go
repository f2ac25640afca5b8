package utils

import (
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
	"golang.org/x/crypto/blake2b"
)

const (
	CompressedPubKeyLength = 33
	scalarLength           = 32
	SignatureLength        = CompressedPubKeyLength + scalarLength
)

// VerifySignature checks a Schnorr signature over secp256k1 produced for message by the
// holder of pubKey. The signature is the 33 byte compressed nonce point `a` followed by
// the 32 byte scalar `z`, and is valid iff z*G == a + e*P where
// e = BLAKE2b-512(a || message || pubKey)[:32].
// Any malformed input yields false.
func VerifySignature(pubKey, message, signature []byte) bool {
	if len(signature) != SignatureLength {
		return false
	}
	pk, err := parseCompressedPubKey(pubKey)
	if err != nil {
		return false
	}
	nonceBytes := signature[:CompressedPubKeyLength]
	nonce, err := parseCompressedPubKey(nonceBytes)
	if err != nil {
		return false
	}

	var z btcec.ModNScalar
	if overflow := z.SetByteSlice(signature[CompressedPubKeyLength:]); overflow || z.IsZero() {
		return false
	}
	e, ok := schnorrChallenge(nonceBytes, message, pubKey)
	if !ok {
		return false
	}

	// lhs = z*G
	var lhs btcec.JacobianPoint
	btcec.ScalarBaseMultNonConst(&z, &lhs)

	// rhs = a + e*P
	var p, eP, a, rhs btcec.JacobianPoint
	pk.AsJacobian(&p)
	btcec.ScalarMultNonConst(&e, &p, &eP)
	nonce.AsJacobian(&a)
	btcec.AddNonConst(&a, &eP, &rhs)
	if (rhs.X.IsZero() && rhs.Y.IsZero()) || rhs.Z.IsZero() {
		return false
	}

	lhs.ToAffine()
	rhs.ToAffine()
	return lhs.X.Equals(&rhs.X) && lhs.Y.Equals(&rhs.Y)
}

// SignMessage produces a signature accepted by VerifySignature.
func SignMessage(privKey *btcec.PrivateKey, message []byte) ([]byte, error) {
	if privKey == nil {
		return nil, errors.New("missing private key")
	}
	pubKey := privKey.PubKey().SerializeCompressed()
	for {
		k, err := btcec.NewPrivateKey()
		if err != nil {
			return nil, err
		}
		nonceBytes := k.PubKey().SerializeCompressed()
		e, ok := schnorrChallenge(nonceBytes, message, pubKey)
		if !ok {
			continue
		}
		var z btcec.ModNScalar
		z.Mul2(&e, &privKey.Key).Add(&k.Key)
		if z.IsZero() {
			continue
		}
		zBytes := z.Bytes()

		sig := make([]byte, 0, SignatureLength)
		sig = append(sig, nonceBytes...)
		sig = append(sig, zBytes[:]...)
		return sig, nil
	}
}

// schnorrChallenge returns false when the hash prefix is not a canonical scalar.
func schnorrChallenge(nonce, message, pubKey []byte) (btcec.ModNScalar, bool) {
	h, _ := blake2b.New512(nil)
	h.Write(nonce)
	h.Write(message)
	h.Write(pubKey)
	digest := h.Sum(nil)

	var e btcec.ModNScalar
	if overflow := e.SetByteSlice(digest[:scalarLength]); overflow {
		return e, false
	}
	return e, true
}

func parseCompressedPubKey(b []byte) (*btcec.PublicKey, error) {
	if len(b) != CompressedPubKeyLength {
		return nil, errors.New("public key must be 33 bytes")
	}
	if b[0] != 0x02 && b[0] != 0x03 {
		return nil, errors.New("public key must be in compressed form")
	}
	return btcec.ParsePubKey(b)
}
