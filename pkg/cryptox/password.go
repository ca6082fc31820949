package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. These follow the OWASP minimum recommendation for
// interactive logins.
const (
	memory      = 19 * 1024 // Memory usage in KiB (19 MiB)
	iterations  = 2         // Iteration count
	parallelism = 1         // Number of threads
	keyLength   = 32        // Length of the derived digest
	saltLength  = 16        // Length of the random salt
)

var (
	// ErrPasswordMismatch is the normal negative result: the supplied
	// password does not match the stored digest.
	ErrPasswordMismatch = errors.New("cryptox: password does not match")

	// ErrMalformedHash indicates the stored secret itself is corrupt
	// (bad structure, bad encoding). This is a data-integrity failure,
	// not a wrong password.
	ErrMalformedHash = errors.New("cryptox: malformed password hash")
)

// HashPassword generates a PHC-format Argon2id hash string including a fresh
// random salt and the derivation parameters. The plaintext is never logged
// or returned.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("cryptox: generate salt: %w", err)
	}

	digest := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, keyLength)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Digest := base64.RawStdEncoding.EncodeToString(digest)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory,
		iterations,
		parallelism,
		b64Salt,
		b64Digest,
	), nil
}

// MustHashPassword is HashPassword for package-level fixtures; it panics on
// failure, which can only happen if the system entropy source is broken.
func MustHashPassword(password string) string {
	hash, err := HashPassword(password)
	if err != nil {
		panic(err)
	}
	return hash
}

// VerifyPassword compares a plaintext password against a PHC-style Argon2id
// hash. The digest comparison is constant-time so the position of the first
// mismatching byte cannot be observed through timing.
//
// Returns nil on match, ErrPasswordMismatch on a wrong password, and
// ErrMalformedHash (wrapped with detail) when the stored secret cannot be
// parsed at all.
func VerifyPassword(password, encodedHash string) error {
	params, salt, expected, err := decodeHash(encodedHash)
	if err != nil {
		return err
	}

	computed := argon2.IDKey(
		[]byte(password),
		salt,
		params.iterations,
		params.memory,
		params.parallelism,
		uint32(len(expected)), // #nosec G115 - digest lengths are tiny
	)

	if subtle.ConstantTimeCompare(computed, expected) == 1 {
		return nil
	}
	return ErrPasswordMismatch
}

type hashParams struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
}

// decodeHash parses a PHC string: $argon2id$v=19$m=X,t=Y,p=Z$salt$digest
func decodeHash(encodedHash string) (hashParams, []byte, []byte, error) {
	var p hashParams

	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return p, nil, nil, fmt.Errorf("%w: expected 6 parts, got %d", ErrMalformedHash, len(parts))
	}
	if parts[1] != "argon2id" {
		return p, nil, nil, fmt.Errorf("%w: not argon2id", ErrMalformedHash)
	}
	if parts[2] != "v=19" {
		return p, nil, nil, fmt.Errorf("%w: wrong version", ErrMalformedHash)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.iterations, &p.parallelism); err != nil {
		return p, nil, nil, fmt.Errorf("%w: bad parameters: %v", ErrMalformedHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: bad salt encoding: %v", ErrMalformedHash, err)
	}
	digest, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: bad digest encoding: %v", ErrMalformedHash, err)
	}
	if len(digest) == 0 {
		return p, nil, nil, fmt.Errorf("%w: empty digest", ErrMalformedHash)
	}

	return p, salt, digest, nil
}
