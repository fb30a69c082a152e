// Package cryptox implements the at-rest encryption used by the key vault:
// AES-256-GCM sealing under a key derived from the user's passphrase with
// argon2id.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/viktorlk/healthwallet/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32
	// SaltSize is the argon2 salt length in bytes.
	SaltSize = 16
)

// DeriveKey stretches a passphrase into a 32-byte AES key using argon2id.
// The same passphrase and salt always produce the same key.
func DeriveKey(passphrase []byte, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, KeySize)
}

// Seal encrypts plaintext with AES-GCM under key. A fresh random nonce is
// generated for every call and returned separately.
//
// The key must be a valid AES key length (16, 24 or 32 bytes).
func Seal(plaintext, key []byte) (ciphertext, nonce []byte, err error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, err
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, err
	}

	nonce = common.GenerateRandByteArray(aesgcm.NonceSize())
	ciphertext = aesgcm.Seal(nil, nonce, plaintext, nil)

	return ciphertext, nonce, nil
}

// Open decrypts ciphertext produced by Seal. The key and nonce must be the
// ones used during encryption; any mismatch (wrong passphrase, bit rot,
// truncated file) fails authentication and returns an error.
func Open(ciphertext, nonce, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return aesgcm.Open(nil, nonce, ciphertext, nil)
}
