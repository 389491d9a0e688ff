// Package pii protects voter-identifying information before it reaches
// storage.
//
// National IDs are obfuscated one-way with argon2id, using a persistent
// pepper as the salt so the same ID always maps to the same identifier.
// Names are encrypted with XChaCha20-Poly1305 under a single persistent key
// and a fresh random nonce per call. Free text is redacted with regular
// expressions (see RedactFreeText).
package pii

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	"election/internal/secrets"
	dErrors "election/pkg/domain-errors"
	"election/pkg/platform/sentinel"
)

const (
	pepperSize = 16
	tagSize    = chacha20poly1305.Overhead
)

// KeySource hands out durable key material by name.
type KeySource interface {
	GetOrCreate(ctx context.Context, name string, size int) ([]byte, error)
}

// ArgonParams tunes the obfuscation cost. Changing any field changes every
// obfuscated ID, so it must stay fixed for the life of an election.
type ArgonParams struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
	KeyLen    uint32
}

// DefaultArgonParams follows the OWASP argon2id minimum.
func DefaultArgonParams() ArgonParams {
	return ArgonParams{Time: 2, MemoryKiB: 19 * 1024, Threads: 1, KeyLen: 32}
}

// Protector holds the provisioned key material. It is safe for concurrent use.
type Protector struct {
	pepper []byte
	aead   cipher.AEAD
	argon  ArgonParams
}

type Option func(*Protector)

func WithArgonParams(p ArgonParams) Option {
	return func(pr *Protector) {
		pr.argon = p
	}
}

// NewProtector provisions the national ID pepper and the name key up front so
// no later call can trigger key generation implicitly.
func NewProtector(ctx context.Context, keys KeySource, opts ...Option) (*Protector, error) {
	if keys == nil {
		return nil, errors.New("key source is required")
	}
	p := &Protector{argon: DefaultArgonParams()}
	for _, opt := range opts {
		opt(p)
	}
	if p.argon.Time == 0 || p.argon.MemoryKiB == 0 || p.argon.Threads == 0 || p.argon.KeyLen == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "argon2 parameters must be positive")
	}

	pepper, err := keys.GetOrCreate(ctx, secrets.NationalIDPepper, pepperSize)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeIntegrity, "provision national id pepper")
	}
	key, err := keys.GetOrCreate(ctx, secrets.NameEncryptionKey, chacha20poly1305.KeySize)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeIntegrity, "provision name encryption key")
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeIntegrity, "init name cipher")
	}
	p.pepper = pepper
	p.aead = aead
	return p, nil
}

// NormalizeNationalID strips hyphens and spaces.
func NormalizeNationalID(raw string) string {
	return strings.TrimSpace(strings.NewReplacer("-", "", " ", "").Replace(raw))
}

// ObfuscateNationalID maps a raw national ID to its stable storage key.
func (p *Protector) ObfuscateNationalID(raw string) string {
	normalized := NormalizeNationalID(raw)
	sum := argon2.IDKey([]byte(normalized), p.pepper, p.argon.Time, p.argon.MemoryKiB, p.argon.Threads, p.argon.KeyLen)
	return base64.RawURLEncoding.EncodeToString(sum)
}

// nameToken is the stored form of an encrypted name.
type nameToken struct {
	Ciphertext string `json:"ciphertext"`
	Tag        string `json:"tag"`
	Nonce      string `json:"nonce"`
}

// EncryptName encrypts a trimmed name under a fresh nonce.
func (p *Protector) EncryptName(name string) (string, error) {
	nonce := make([]byte, p.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := p.aead.Seal(nil, nonce, []byte(strings.TrimSpace(name)), nil)
	split := len(sealed) - tagSize

	token, err := json.Marshal(nameToken{
		Ciphertext: base64.StdEncoding.EncodeToString(sealed[:split]),
		Tag:        base64.StdEncoding.EncodeToString(sealed[split:]),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
	})
	if err != nil {
		return "", fmt.Errorf("encode name token: %w", err)
	}
	return string(token), nil
}

// DecryptName reverses EncryptName. Malformed or tampered tokens return an
// error wrapping sentinel.ErrTampered.
func (p *Protector) DecryptName(token string) (string, error) {
	var t nameToken
	if err := json.Unmarshal([]byte(token), &t); err != nil {
		return "", fmt.Errorf("decode name token: %w", errors.Join(sentinel.ErrTampered, err))
	}
	ciphertext, err := base64.StdEncoding.DecodeString(t.Ciphertext)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", errors.Join(sentinel.ErrTampered, err))
	}
	tag, err := base64.StdEncoding.DecodeString(t.Tag)
	if err != nil || len(tag) != tagSize {
		return "", fmt.Errorf("decode tag: %w", sentinel.ErrTampered)
	}
	nonce, err := base64.StdEncoding.DecodeString(t.Nonce)
	if err != nil || len(nonce) != p.aead.NonceSize() {
		return "", fmt.Errorf("decode nonce: %w", sentinel.ErrTampered)
	}

	plaintext, err := p.aead.Open(nil, nonce, append(ciphertext, tag...), nil)
	if err != nil {
		return "", fmt.Errorf("authenticate name: %w", sentinel.ErrTampered)
	}
	return string(plaintext), nil
}
