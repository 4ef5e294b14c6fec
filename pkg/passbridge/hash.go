package passbridge

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/scrypt"
	"golang.org/x/text/unicode/norm"
)

// Legacy bcrypt cost. Fixed; existing hashes in the wild were produced
// with it.
const legacyBcryptCost = 10

// IAM scrypt parameters. Fixed for the same reason.
const (
	scryptN      = 16384
	scryptR      = 16
	scryptP      = 1
	scryptKeyLen = 64
	scryptSalt   = 16
)

// isHexDigest reports whether s is a 64-character lowercase-or-uppercase
// hex string, i.e. a SHA-256 digest.
func isHexDigest(s string) bool {
	if len(s) != 64 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// NormalizePassword maps a presented password to the canonical pre-hashed
// form: a value that already is a SHA-256 hex digest passes through,
// anything else is digested. Idempotent once hashed.
func NormalizePassword(password string) string {
	if isHexDigest(password) {
		return password
	}
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// LegacyHash produces the legacy-compatible bcrypt hash of the normalized
// password.
func LegacyHash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(NormalizePassword(password)), legacyBcryptCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(hash), nil
}

// VerifyLegacy checks a presented password against a stored legacy hash.
// Both historical forms are accepted: the hash may cover the raw password
// or its SHA-256 digest.
func VerifyLegacy(password, storedHash string) bool {
	if storedHash == "" {
		return false
	}
	if bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)) == nil {
		return true
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(NormalizePassword(password))) == nil
}

// IamHash produces the IAM-compatible scrypt hash of the normalized
// password, NFKC-normalized first, as "saltHex:hashHex".
func IamHash(password string) (string, error) {
	salt := make([]byte, scryptSalt)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}

	key, err := scrypt.Key(
		[]byte(norm.NFKC.String(NormalizePassword(password))),
		salt, scryptN, scryptR, scryptP, scryptKeyLen,
	)
	if err != nil {
		return "", fmt.Errorf("scrypt: %w", err)
	}
	return hex.EncodeToString(salt) + ":" + hex.EncodeToString(key), nil
}

// VerifyIam checks a presented password against a stored IAM scrypt hash.
func VerifyIam(password, storedHash string) bool {
	saltHex, hashHex, ok := strings.Cut(storedHash, ":")
	if !ok {
		return false
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}
	expected, err := hex.DecodeString(hashHex)
	if err != nil {
		return false
	}

	key, err := scrypt.Key(
		[]byte(norm.NFKC.String(NormalizePassword(password))),
		salt, scryptN, scryptR, scryptP, scryptKeyLen,
	)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(key, expected) == 1
}
