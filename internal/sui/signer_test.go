package sui

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
)

func testSeed() []byte {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i + 1)
	}
	return seed
}

func TestNewSignerAcceptedEncodings(t *testing.T) {
	seed := testSeed()
	flagged := append([]byte{0x00}, seed...)

	encodings := map[string]string{
		"base64 bare seed":    base64.StdEncoding.EncodeToString(seed),
		"base64 flagged seed": base64.StdEncoding.EncodeToString(flagged),
		"hex bare seed":       hex.EncodeToString(seed),
		"hex with 0x prefix":  "0x" + hex.EncodeToString(flagged),
	}

	var addr string
	for name, encoded := range encodings {
		s, err := NewSigner(encoded)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if addr == "" {
			addr = s.Address()
		} else if s.Address() != addr {
			t.Fatalf("%s: address %s differs from %s", name, s.Address(), addr)
		}
	}

	if !strings.HasPrefix(addr, "0x") || len(addr) != 66 {
		t.Fatalf("malformed address %s", addr)
	}
}

func TestNewSignerRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"garbage":        "not-a-key!!",
		"wrong length":   base64.StdEncoding.EncodeToString([]byte{1, 2, 3}),
		"unknown scheme": base64.StdEncoding.EncodeToString(append([]byte{0x01}, testSeed()...)),
	}
	for name, encoded := range cases {
		if _, err := NewSigner(encoded); !errors.Is(err, ErrInvalidParameter) {
			t.Fatalf("%s: err = %v, want ErrInvalidParameter", name, err)
		}
	}
}

func TestSignSerialization(t *testing.T) {
	s, err := NewSigner(base64.StdEncoding.EncodeToString(testSeed()))
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}

	message := []byte("tx bytes")
	raw, err := base64.StdEncoding.DecodeString(s.Sign(message))
	if err != nil {
		t.Fatalf("signature not base64: %v", err)
	}

	if len(raw) != 1+ed25519.SignatureSize+ed25519.PublicKeySize {
		t.Fatalf("serialized signature length = %d", len(raw))
	}
	if raw[0] != 0x00 {
		t.Fatalf("scheme flag = 0x%02x", raw[0])
	}

	sig := raw[1 : 1+ed25519.SignatureSize]
	pub := ed25519.PublicKey(raw[1+ed25519.SignatureSize:])
	if !ed25519.Verify(pub, message, sig) {
		t.Fatalf("signature does not verify")
	}

	priv := ed25519.NewKeyFromSeed(testSeed())
	if !bytes.Equal(pub, priv.Public().(ed25519.PublicKey)) {
		t.Fatalf("embedded public key mismatch")
	}
}
