// Package cryptox hashes and verifies user passwords.
//
// Hashes are stored as "method$salt$digest". New hashes use argon2id:
//
//	argon2id:<time>:<memory KiB>:<threads>$<salt hex>$<key hex>
//
// Verification also understands the werkzeug formats produced by the
// previous deployment, so imported accounts keep working:
//
//	pbkdf2:<sha1|sha256|sha512>[:<iterations>]$<salt>$<hex>
//	scrypt:<N>:<r>:<p>$<salt>$<hex>
package cryptox

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/photoshare/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	saltLen      = 16

	// werkzeug's default when the iteration count is omitted
	defaultPBKDF2Iterations = 260000
	scryptKeyLen            = 64
)

// ErrUnsupportedHash is returned for hashes in an unknown format.
var ErrUnsupportedHash = errors.New("unsupported password hash")

// HashPassword derives an argon2id hash of password with a random salt.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: empty password", common.ErrorValidation)
	}

	salt := common.GenerateRandByteArray(saltLen)
	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	defer common.WipeByteArray(key)

	return fmt.Sprintf("argon2id:%d:%d:%d$%s$%s",
		argonTime, argonMemory, argonThreads, hex.EncodeToString(salt), hex.EncodeToString(key)), nil
}

// VerifyPassword reports whether password matches encoded. Malformed or
// unknown hashes never match.
func VerifyPassword(encoded, password string) bool {
	ok, err := verify(encoded, password)
	return err == nil && ok
}

func verify(encoded, password string) (bool, error) {
	parts := strings.SplitN(encoded, "$", 3)
	if len(parts) != 3 {
		return false, ErrUnsupportedHash
	}
	method, salt, digest := parts[0], parts[1], parts[2]

	want, err := hex.DecodeString(digest)
	if err != nil || len(want) == 0 {
		return false, ErrUnsupportedHash
	}

	params := strings.Split(method, ":")
	var got []byte

	switch params[0] {
	case "argon2id":
		got, err = argonKey(params[1:], salt, password, len(want))
	case "pbkdf2":
		got, err = pbkdf2Key(params[1:], salt, password, len(want))
	case "scrypt":
		got, err = scryptKey(params[1:], salt, password, len(want))
	default:
		return false, ErrUnsupportedHash
	}
	if err != nil {
		return false, err
	}
	defer common.WipeByteArray(got)

	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

func argonKey(params []string, saltHex, password string, keyLen int) ([]byte, error) {
	if len(params) != 3 {
		return nil, ErrUnsupportedHash
	}
	n, err := atoiAll(params)
	if err != nil {
		return nil, err
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return nil, ErrUnsupportedHash
	}
	return argon2.IDKey([]byte(password), salt, uint32(n[0]), uint32(n[1]), uint8(n[2]), uint32(keyLen)), nil
}

func pbkdf2Key(params []string, salt, password string, keyLen int) ([]byte, error) {
	if len(params) < 1 || len(params) > 2 {
		return nil, ErrUnsupportedHash
	}

	var h func() hash.Hash
	switch params[0] {
	case "sha1":
		h = sha1.New
	case "sha256":
		h = sha256.New
	case "sha512":
		h = sha512.New
	default:
		return nil, ErrUnsupportedHash
	}

	iterations := defaultPBKDF2Iterations
	if len(params) == 2 {
		n, err := atoiAll(params[1:])
		if err != nil {
			return nil, err
		}
		iterations = n[0]
	}

	return pbkdf2.Key([]byte(password), []byte(salt), iterations, keyLen, h), nil
}

func scryptKey(params []string, salt, password string, keyLen int) ([]byte, error) {
	if len(params) != 3 {
		return nil, ErrUnsupportedHash
	}
	n, err := atoiAll(params)
	if err != nil {
		return nil, err
	}
	if keyLen != scryptKeyLen {
		return nil, ErrUnsupportedHash
	}
	key, err := scrypt.Key([]byte(password), []byte(salt), n[0], n[1], n[2], keyLen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedHash, err)
	}
	return key, nil
}

func atoiAll(ss []string) ([]int, error) {
	out := make([]int, len(ss))
	for i, s := range ss {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return nil, ErrUnsupportedHash
		}
		out[i] = n
	}
	return out, nil
}
