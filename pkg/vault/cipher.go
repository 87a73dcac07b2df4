package vault

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pinKeyIterations = 100000
	keySize          = 32
	saltSize         = 16

	// PrivateKeySize is the length of an ed25519 secret key (seed + public key).
	PrivateKeySize = 64
)

var (
	ErrDecrypt           = errors.New("failed to decrypt")
	ErrInvalidKeyLength  = errors.New("decrypted private key must be 64 bytes long")
	ErrInvalidSealingKey = errors.New("sealing key must be exactly 32 bytes")
)

// EncryptedKey is a private key sealed with a key derived from the owner's PIN.
// Every field is hex encoded.
type EncryptedKey struct {
	Data string
	IV   string
	Salt string
}

// EncryptPrivateKey seals privateKey with AES-256-CBC under a PBKDF2-SHA256 key
// derived from pin. The salt is kept in its hex form and that text is what
// goes into PBKDF2, so existing wallet records still open.
func EncryptPrivateKey(privateKey []byte, pin string) (*EncryptedKey, error) {
	rawSalt, err := randomBytes(saltSize)
	if err != nil {
		return nil, err
	}
	salt := hex.EncodeToString(rawSalt)

	iv, err := randomBytes(aes.BlockSize)
	if err != nil {
		return nil, err
	}

	data, err := encryptCBC(deriveKey(pin, salt), iv, privateKey)
	if err != nil {
		return nil, err
	}

	return &EncryptedKey{
		Data: hex.EncodeToString(data),
		IV:   hex.EncodeToString(iv),
		Salt: salt,
	}, nil
}

// DecryptPrivateKey opens a key sealed by EncryptPrivateKey. A wrong PIN
// yields ErrDecrypt.
func DecryptPrivateKey(key EncryptedKey, pin string) ([]byte, error) {
	data, err := hex.DecodeString(key.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	iv, err := hex.DecodeString(key.IV)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}

	privateKey, err := decryptCBC(deriveKey(pin, key.Salt), iv, data)
	if err != nil {
		return nil, err
	}
	if len(privateKey) != PrivateKeySize {
		return nil, ErrInvalidKeyLength
	}
	return privateKey, nil
}

// Sealer encrypts small secrets, such as TOTP seeds, under a server-held key.
type Sealer struct {
	key []byte
}

func NewSealer(key string) (*Sealer, error) {
	if len(key) != keySize {
		return nil, ErrInvalidSealingKey
	}
	return &Sealer{key: []byte(key)}, nil
}

// Seal returns the hex ciphertext and hex IV of plain.
func (s *Sealer) Seal(plain string) (string, string, error) {
	iv, err := randomBytes(aes.BlockSize)
	if err != nil {
		return "", "", err
	}
	data, err := encryptCBC(s.key, iv, []byte(plain))
	if err != nil {
		return "", "", err
	}
	return hex.EncodeToString(data), hex.EncodeToString(iv), nil
}

func (s *Sealer) Open(data, iv string) (string, error) {
	rawData, err := hex.DecodeString(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	rawIV, err := hex.DecodeString(iv)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	plain, err := decryptCBC(s.key, rawIV, rawData)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func deriveKey(pin, salt string) []byte {
	return pbkdf2.Key([]byte(pin), []byte(salt), pinKeyIterations, keySize, sha256.New)
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to read random bytes: %w", err)
	}
	return b, nil
}

func encryptCBC(key, iv, plain []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	padding := aes.BlockSize - len(plain)%aes.BlockSize
	padded := append(append([]byte{}, plain...), bytes.Repeat([]byte{byte(padding)}, padding)...)

	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
	return out, nil
}

func decryptCBC(key, iv, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	if len(iv) != aes.BlockSize || len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: malformed ciphertext", ErrDecrypt)
	}

	out := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, data)

	// PKCS#7
	padding := int(out[len(out)-1])
	if padding == 0 || padding > aes.BlockSize {
		return nil, fmt.Errorf("%w: bad padding", ErrDecrypt)
	}
	for _, b := range out[len(out)-padding:] {
		if int(b) != padding {
			return nil, fmt.Errorf("%w: bad padding", ErrDecrypt)
		}
	}
	return out[:len(out)-padding], nil
}
