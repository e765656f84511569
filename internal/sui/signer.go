package sui

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// ed25519Flag is the scheme flag prepended to ed25519 public keys when
// deriving addresses and serializing signatures.
const ed25519Flag byte = 0x00

// Signer holds the single service signing credential. It is constructed
// once at startup and shared read-only by all concurrent submissions; the
// private key never leaves this type.
type Signer struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
	addr string
}

// NewSigner parses a private key from its environment encoding. Accepted
// forms: base64 of flag||seed (33 bytes), base64 of the bare 32-byte seed,
// or the same two shapes hex-encoded.
func NewSigner(encoded string) (*Signer, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, InvalidParameterf("signing key is empty")
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		raw, err = hex.DecodeString(strings.TrimPrefix(encoded, "0x"))
		if err != nil {
			return nil, InvalidParameterf("signing key is neither base64 nor hex")
		}
	}

	var seed []byte
	switch len(raw) {
	case ed25519.SeedSize + 1:
		if raw[0] != ed25519Flag {
			return nil, InvalidParameterf("unsupported key scheme flag 0x%02x", raw[0])
		}
		seed = raw[1:]
	case ed25519.SeedSize:
		seed = raw
	default:
		return nil, InvalidParameterf("signing key must be 32 or 33 bytes, got %d", len(raw))
	}

	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)

	addr, err := addressFromPublicKey(pub)
	if err != nil {
		return nil, err
	}

	return &Signer{priv: priv, pub: pub, addr: addr}, nil
}

// Address returns the ledger address controlled by this signer.
func (s *Signer) Address() string {
	return s.addr
}

// Sign produces a serialized signature over the given message: the scheme
// flag, the raw ed25519 signature, and the public key, base64-encoded.
func (s *Signer) Sign(message []byte) string {
	sig := ed25519.Sign(s.priv, message)

	serialized := make([]byte, 0, 1+len(sig)+len(s.pub))
	serialized = append(serialized, ed25519Flag)
	serialized = append(serialized, sig...)
	serialized = append(serialized, s.pub...)
	return base64.StdEncoding.EncodeToString(serialized)
}

// addressFromPublicKey derives the address: blake2b-256 over flag||pubkey.
func addressFromPublicKey(pub ed25519.PublicKey) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", fmt.Errorf("init blake2b: %w", err)
	}
	h.Write([]byte{ed25519Flag})
	h.Write(pub)
	return "0x" + hex.EncodeToString(h.Sum(nil)), nil
}
