package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// PasswordScheme turns a password into its stored form and checks a
// candidate against a stored value.
type PasswordScheme interface {
	Hash(password string) (string, error)
	Verify(password string, stored string) bool
}

// Plaintext stores passwords unchanged and compares them exactly.
type Plaintext struct{}

func (Plaintext) Hash(password string) (string, error) { return password, nil }

func (Plaintext) Verify(password string, stored string) bool {
	return subtle.ConstantTimeCompare([]byte(password), []byte(stored)) == 1
}

// Argon2id stores encoded argon2id hashes. Stored values that are not
// argon2id encodings are compared as plaintext so accounts created before
// hashing was enabled can still log in.
type Argon2id struct {
	Params Argon2Params
}

func (a Argon2id) Hash(password string) (string, error) {
	params := a.Params
	if params == (Argon2Params{}) {
		params = defaultParams
	}
	encoded, err := HashPasswordWithParams(password, params)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func (a Argon2id) Verify(password string, stored string) bool {
	if !strings.HasPrefix(stored, "$argon2id$") {
		return Plaintext{}.Verify(password, stored)
	}
	ok, err := VerifyPassword(password, []byte(stored))
	return err == nil && ok
}

// NewPasswordScheme returns the scheme for a security.passwordhashing value.
func NewPasswordScheme(name string) (PasswordScheme, error) {
	switch name {
	case "", "plaintext":
		return Plaintext{}, nil
	case "argon2id":
		return Argon2id{}, nil
	}
	return nil, fmt.Errorf("unknown password scheme %q", name)
}

type Argon2Params struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

var defaultParams = Argon2Params{
	Time:    3,
	Memory:  64 * 1024,
	Threads: 2,
	KeyLen:  32,
	SaltLen: 16,
}

func HashPassword(password string) ([]byte, error) {
	return HashPasswordWithParams(password, defaultParams)
}

func HashPasswordWithParams(password string, params Argon2Params) ([]byte, error) {
	salt := make([]byte, params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Threads, params.KeyLen)

	encoded := base64.StdEncoding.EncodeToString(hash)
	encodedSalt := base64.StdEncoding.EncodeToString(salt)

	result := fmt.Sprintf("$argon2id$v=19$t=%d,m=%d,p=%d$%s$%s",
		params.Time, params.Memory, params.Threads, encodedSalt, encoded)

	return []byte(result), nil
}

func VerifyPassword(password string, encodedHash []byte) (bool, error) {
	parts := strings.Split(string(encodedHash), "$")
	if len(parts) != 6 || parts[1] != "argon2id" || parts[2] != "v=19" {
		return false, fmt.Errorf("parse hash: unexpected format")
	}

	var (
		time    uint32
		memory  uint32
		threads uint8
	)
	if _, err := fmt.Sscanf(parts[3], "t=%d,m=%d,p=%d", &time, &memory, &threads); err != nil {
		return false, fmt.Errorf("parse hash: %w", err)
	}
	saltB64, hashB64 := parts[4], parts[5]

	salt, err := base64.StdEncoding.DecodeString(saltB64)
	if err != nil {
		return false, fmt.Errorf("decode salt: %w", err)
	}

	hash, err := base64.StdEncoding.DecodeString(hashB64)
	if err != nil {
		return false, fmt.Errorf("decode hash: %w", err)
	}

	params := Argon2Params{
		Time:    time,
		Memory:  memory,
		Threads: threads,
		KeyLen:  uint32(len(hash)),
		SaltLen: uint32(len(salt)),
	}

	computed := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Threads, params.KeyLen)

	if subtle.ConstantTimeCompare(hash, computed) == 1 {
		return true, nil
	}
	return false, nil
}
