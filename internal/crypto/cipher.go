package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"

	"github.com/frahmantamala/farm-management/internal"
)

const (
	keyLength   = 32
	nonceLength = 12
	tagLength   = 16

	// Fixed KDF salt: the deployment secret is the only moving part of the
	// key. Rotating the secret invalidates every stored credential, which is
	// surfaced as an integrity failure on decrypt.
	kdfSalt = "farm-management-credential-salt"

	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// associatedData binds every token to this subsystem so a ciphertext lifted
// from another AES-GCM user of the same key cannot be replayed here.
var associatedData = []byte("tenant-database-credentials")

// CredentialCipher encrypts and decrypts per-tenant database passwords.
// Tokens have the wire form ivHex:authTagHex:cipherHex.
type CredentialCipher struct {
	secret string
}

func NewCredentialCipher(secret string) *CredentialCipher {
	return &CredentialCipher{secret: secret}
}

func (c *CredentialCipher) aead() (cipher.AEAD, error) {
	if c.secret == "" {
		return nil, internal.ErrEncryptionSecretUnset
	}

	key, err := scrypt.Key([]byte(c.secret), []byte(kdfSalt), scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return nil, internal.NewInternalError("key derivation failed", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, internal.NewInternalError("cipher initialization failed", err)
	}

	return cipher.NewGCM(block)
}

// Encrypt seals plaintext under a fresh random nonce. Encrypting the same
// plaintext twice yields different tokens.
func (c *CredentialCipher) Encrypt(plaintext string) (string, error) {
	aead, err := c.aead()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceLength)
	if _, err := rand.Read(nonce); err != nil {
		return "", internal.NewInternalError("nonce generation failed", err)
	}

	sealed := aead.Seal(nil, nonce, []byte(plaintext), associatedData)
	ciphertext := sealed[:len(sealed)-tagLength]
	authTag := sealed[len(sealed)-tagLength:]

	return fmt.Sprintf("%s:%s:%s",
		hex.EncodeToString(nonce),
		hex.EncodeToString(authTag),
		hex.EncodeToString(ciphertext)), nil
}

// Decrypt opens a token produced by Encrypt. Any tampering with the token,
// and any secret rotation without re-encrypting stored values, fails the
// tag check and returns an integrity error; wrong plaintext is never
// returned silently.
func (c *CredentialCipher) Decrypt(token string) (string, error) {
	aead, err := c.aead()
	if err != nil {
		return "", err
	}

	nonce, authTag, ciphertext, err := splitToken(token)
	if err != nil {
		return "", err
	}

	sealed := append(ciphertext, authTag...)
	plaintext, err := aead.Open(nil, nonce, sealed, associatedData)
	if err != nil {
		return "", internal.ErrCredentialTampered.WithCause(err)
	}

	return string(plaintext), nil
}

func splitToken(token string) (nonce, authTag, ciphertext []byte, err error) {
	parts := strings.Split(token, ":")
	if len(parts) != 3 {
		return nil, nil, nil, internal.ErrCredentialTampered
	}

	nonce, err = hex.DecodeString(parts[0])
	if err != nil || len(nonce) != nonceLength {
		return nil, nil, nil, internal.ErrCredentialTampered
	}
	authTag, err = hex.DecodeString(parts[1])
	if err != nil || len(authTag) != tagLength {
		return nil, nil, nil, internal.ErrCredentialTampered
	}
	ciphertext, err = hex.DecodeString(parts[2])
	if err != nil {
		return nil, nil, nil, internal.ErrCredentialTampered
	}

	return nonce, authTag, ciphertext, nil
}

// GenerateRandomSecret returns a fresh hex-encoded deployment secret,
// suitable for SECURITY_ENCRYPTION_SECRET.
func GenerateRandomSecret() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
