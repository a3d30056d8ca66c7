// Package clientcrypto contains the client-side sealing used by the CLI:
// per-message keys wrapped under a conversation key, and password-wrapped
// identity keys. The server only ever sees the resulting opaque strings.
package clientcrypto

import (
	"crypto/rand"
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/curve25519"
)

// Params
const (
	KeyLen  = 32
	SaltLen = 16

	argonTime    uint32 = 3
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 1
)

// ErrMalformed is returned for sealed values that cannot be decoded.
var ErrMalformed = errors.New("malformed sealed value")

var enc = base64.RawStdEncoding

// Rand returns n random bytes.
func Rand(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// DeriveKey derives a 32-byte key from a secret and salt using Argon2id.
func DeriveKey(secret, salt []byte) []byte {
	return argon2.IDKey(secret, salt, argonTime, argonMemory, argonThreads, KeyLen)
}

// seal encrypts plaintext with XChaCha20-Poly1305 and prefixes the random nonce.
func seal(key, plaintext, aad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce, err := Rand(chacha20poly1305.NonceSizeX)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, aad), nil
}

func open(key, sealed, aad []byte) ([]byte, error) {
	if len(sealed) < chacha20poly1305.NonceSizeX {
		return nil, ErrMalformed
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := sealed[:chacha20poly1305.NonceSizeX]
	return aead.Open(nil, nonce, sealed[chacha20poly1305.NonceSizeX:], aad)
}

// SealMessage encrypts plaintext under a fresh message key bound to the
// conversation ID, and wraps the message key with convKey.
// It returns the content and encryptionKey strings stored by the server.
func SealMessage(convKey, conversationID, plaintext []byte) (content, encryptionKey string, err error) {
	mk, err := Rand(KeyLen)
	if err != nil {
		return "", "", err
	}
	ct, err := seal(mk, plaintext, conversationID)
	if err != nil {
		return "", "", err
	}
	wrapped, err := seal(convKey, mk, conversationID)
	if err != nil {
		return "", "", err
	}
	return enc.EncodeToString(ct), enc.EncodeToString(wrapped), nil
}

// OpenMessage reverses SealMessage.
func OpenMessage(convKey, conversationID []byte, content, encryptionKey string) ([]byte, error) {
	wrapped, err := enc.DecodeString(encryptionKey)
	if err != nil {
		return nil, ErrMalformed
	}
	ct, err := enc.DecodeString(content)
	if err != nil {
		return nil, ErrMalformed
	}
	mk, err := open(convKey, wrapped, conversationID)
	if err != nil {
		return nil, err
	}
	return open(mk, ct, conversationID)
}

// KeyPair is an X25519 identity key pair.
type KeyPair struct {
	Public  []byte
	Private []byte
}

// GenerateKeyPair returns a fresh X25519 key pair.
func GenerateKeyPair() (KeyPair, error) {
	priv, err := Rand(curve25519.ScalarSize)
	if err != nil {
		return KeyPair{}, err
	}
	pub, err := curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		return KeyPair{}, err
	}
	return KeyPair{Public: pub, Private: priv}, nil
}

// EncodePublic returns the public key in its stored form.
func (k KeyPair) EncodePublic() string { return enc.EncodeToString(k.Public) }

// WrapPrivate encrypts the private key under a password. The result is
// salt||nonce||ciphertext, base64 encoded.
func (k KeyPair) WrapPrivate(password []byte) (string, error) {
	salt, err := Rand(SaltLen)
	if err != nil {
		return "", err
	}
	sealed, err := seal(DeriveKey(password, salt), k.Private, nil)
	if err != nil {
		return "", err
	}
	return enc.EncodeToString(append(salt, sealed...)), nil
}

// UnwrapPrivate decrypts a value produced by WrapPrivate.
func UnwrapPrivate(password []byte, wrapped string) ([]byte, error) {
	raw, err := enc.DecodeString(wrapped)
	if err != nil || len(raw) < SaltLen {
		return nil, ErrMalformed
	}
	return open(DeriveKey(password, raw[:SaltLen]), raw[SaltLen:], nil)
}
