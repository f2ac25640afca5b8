package utils

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// ParsePubKeyHex decodes a hex encoded 33 byte compressed secp256k1 public key
// and checks that it is a point on the curve.
func ParsePubKeyHex(pkHex string) ([]byte, error) {
	pk, err := hex.DecodeString(pkHex)
	if err != nil {
		return nil, fmt.Errorf("public key is not valid hex: %w", err)
	}
	if _, err := parseCompressedPubKey(pk); err != nil {
		return nil, fmt.Errorf("invalid public key: %w", err)
	}
	return pk, nil
}

// IsValidPubKeyHex checks if the given string is a compressed secp256k1 public key in hex format
func IsValidPubKeyHex(pkHex string) bool {
	_, err := ParsePubKeyHex(pkHex)
	return err == nil
}

// ParseSignatureHex decodes a hex encoded signature and checks its length.
// Note: it does not check the actual content of the signature.
func ParseSignatureHex(sigHex string) ([]byte, error) {
	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		return nil, fmt.Errorf("signature is not valid hex: %w", err)
	}
	if len(sig) != SignatureLength {
		return nil, fmt.Errorf("signature must be %d bytes, got %d", SignatureLength, len(sig))
	}
	return sig, nil
}

// IsValidRedemptionId checks if the given string looks like a redemption id
func IsValidRedemptionId(id string) bool {
	b, err := hex.DecodeString(id)
	return err == nil && len(b) == 32 && id == strings.ToLower(id)
}
