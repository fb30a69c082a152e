// Package vault owns the wallet identity: an ed25519 key pair generated once
// per installation and persisted encrypted at rest. The private key never
// leaves this package; callers get the derived address and a signing
// operation.
package vault

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/viktorlk/healthwallet/internal/common"
	"github.com/viktorlk/healthwallet/internal/cryptox"
	"github.com/viktorlk/healthwallet/internal/filex"
	"golang.org/x/crypto/sha3"
)

const keystoreVersion = 1

// keystoreFile is the on-disk identity record. The ed25519 seed is sealed
// with AES-GCM under an argon2id-derived key; everything else is public.
// Unknown fields are ignored on load so older agents can read newer files.
type keystoreFile struct {
	Version    int    `json:"version"`
	Address    string `json:"address"`
	PublicKey  []byte `json:"public_key"`
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// Vault holds the loaded identity. The zero value is locked: Sign fails
// until an identity has been loaded through Open.
type Vault struct {
	path    string
	priv    ed25519.PrivateKey
	pub     ed25519.PublicKey
	address string
}

// Open loads the identity persisted at path, or, when no keystore exists
// yet, generates a fresh key pair and persists it atomically before
// returning. Persisted material that cannot be parsed or decrypted yields
// ErrVaultCorrupt: the vault never regenerates a key over an existing file,
// since the old address may hold a balance.
func Open(path string, passphrase []byte) (*Vault, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return create(path, passphrase)
	}
	if err != nil {
		return nil, fmt.Errorf("read keystore: %w", err)
	}

	var ks keystoreFile
	if err := json.Unmarshal(data, &ks); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrVaultCorrupt, err)
	}
	if len(ks.Salt) == 0 || len(ks.Nonce) == 0 || len(ks.Ciphertext) == 0 {
		return nil, fmt.Errorf("%w: incomplete keystore", common.ErrVaultCorrupt)
	}

	key := cryptox.DeriveKey(passphrase, ks.Salt)
	defer common.WipeByteArray(key)

	seed, err := cryptox.Open(ks.Ciphertext, ks.Nonce, key)
	if err != nil {
		return nil, fmt.Errorf("%w: seed decryption failed (wrong passphrase or damaged keystore)", common.ErrVaultCorrupt)
	}
	if len(seed) != ed25519.SeedSize {
		common.WipeByteArray(seed)
		return nil, fmt.Errorf("%w: unexpected seed length %d", common.ErrVaultCorrupt, len(seed))
	}

	priv := ed25519.NewKeyFromSeed(seed)
	common.WipeByteArray(seed)
	pub := priv.Public().(ed25519.PublicKey)

	// The stored public key and address are derived values; if they drifted
	// from the seed the file was tampered with or mixed up.
	if len(ks.PublicKey) > 0 && !pub.Equal(ed25519.PublicKey(ks.PublicKey)) {
		return nil, fmt.Errorf("%w: public key does not match seed", common.ErrVaultCorrupt)
	}
	addr := DeriveAddress(pub)
	if ks.Address != "" && ks.Address != addr {
		return nil, fmt.Errorf("%w: address does not match key material", common.ErrVaultCorrupt)
	}

	return &Vault{path: path, priv: priv, pub: pub, address: addr}, nil
}

func create(path string, passphrase []byte) (*Vault, error) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, fmt.Errorf("generate key pair: %w", err)
	}

	salt := common.GenerateRandByteArray(cryptox.SaltSize)
	key := cryptox.DeriveKey(passphrase, salt)
	defer common.WipeByteArray(key)

	ciphertext, nonce, err := cryptox.Seal(priv.Seed(), key)
	if err != nil {
		return nil, fmt.Errorf("seal seed: %w", err)
	}

	addr := DeriveAddress(pub)
	ks := keystoreFile{
		Version:    keystoreVersion,
		Address:    addr,
		PublicKey:  pub,
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: ciphertext,
	}

	data, err := json.Marshal(ks)
	if err != nil {
		return nil, fmt.Errorf("encode keystore: %w", err)
	}

	// Persist before returning: restarting right after first run must load
	// the same identity, not mint a second one.
	if err := filex.WriteFileAtomic(path, data, 0o600); err != nil {
		return nil, fmt.Errorf("persist keystore: %w", err)
	}

	return &Vault{path: path, priv: priv, pub: pub, address: addr}, nil
}

// Address returns the wallet address derived from the public key. Stable for
// the lifetime of the installation.
func (v *Vault) Address() string {
	return v.address
}

// PublicKey returns a copy of the identity's public key.
func (v *Vault) PublicKey() []byte {
	out := make([]byte, len(v.pub))
	copy(out, v.pub)
	return out
}

// Sign signs a transaction intent and returns the signature. The private key
// itself is never returned. Fails with ErrVaultLocked on a vault that has no
// identity loaded.
func (v *Vault) Sign(intent []byte) ([]byte, error) {
	if v == nil || v.priv == nil {
		return nil, common.ErrVaultLocked
	}
	return ed25519.Sign(v.priv, intent), nil
}

// DeriveAddress maps a public key to its wallet address: the last 20 bytes
// of the Keccak-256 digest, hex encoded with a 0x prefix.
func DeriveAddress(pub []byte) string {
	h := sha3.NewLegacyKeccak256()
	h.Write(pub)
	sum := h.Sum(nil)
	return "0x" + hex.EncodeToString(sum[len(sum)-20:])
}
