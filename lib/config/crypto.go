// splunkctl
// Copyright (C) 2025  splunkctl authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"io"
	"os"

	"github.com/gravitational/trace"
	"golang.org/x/crypto/argon2"

	"github.com/splunkctl/splunkctl/lib/defaults"
	"github.com/splunkctl/splunkctl/lib/secret"
	"github.com/splunkctl/splunkctl/lib/utils"
)

const (
	masterKeyLen = 32
	nonceLen     = 12
	saltLen      = 16

	// Argon2id parameters for the password-derived master key.
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// Cipher encrypts the profile catalog at rest with AES-256-GCM. The
// wire format is a 12-byte random nonce followed by ciphertext+tag.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher builds a Cipher from a 32-byte master key.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != masterKeyLen {
		return nil, trace.BadParameter("master key must be %d bytes, got %d", masterKeyLen, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random nonce.
func (c *Cipher) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, trace.Wrap(err, "generating nonce")
	}
	return c.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens a nonce-prefixed ciphertext. A failure here means the
// key is wrong or the file is corrupt, never that the file is absent;
// callers check for existence before decrypting.
func (c *Cipher) Decrypt(data []byte) ([]byte, error) {
	if len(data) < nonceLen {
		return nil, trace.BadParameter("encrypted config is too short to hold a nonce")
	}
	plaintext, err := c.aead.Open(nil, data[:nonceLen], data[nonceLen:], nil)
	if err != nil {
		return nil, trace.WrapWithMessage(err, "decrypting config: wrong master key or corrupt file")
	}
	return plaintext, nil
}

// KeyringMasterKey loads the random master key from the OS keyring,
// generating and storing one on first use.
func KeyringMasterKey(store secret.Store) ([]byte, error) {
	existing, err := store.Get(defaults.KeyringService, defaults.KeyringMasterKeyAccount)
	if err == nil {
		key, decodeErr := hex.DecodeString(existing.Reveal())
		if decodeErr != nil || len(key) != masterKeyLen {
			return nil, trace.BadParameter("keyring master key is malformed")
		}
		return key, nil
	}
	if !trace.IsNotFound(err) {
		return nil, trace.Wrap(err)
	}

	key := make([]byte, masterKeyLen)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, trace.Wrap(err, "generating master key")
	}
	if err := store.Set(defaults.KeyringService, defaults.KeyringMasterKeyAccount, secret.New(hex.EncodeToString(key))); err != nil {
		return nil, trace.Wrap(err, "storing master key in keyring")
	}
	return key, nil
}

// PasswordMasterKey derives the master key from a password with
// Argon2id. The random salt lives in a sibling file next to the config;
// it is created on first use.
func PasswordMasterKey(password secret.Secret, saltPath string) ([]byte, error) {
	if password.IsZero() {
		return nil, trace.BadParameter("empty encryption password")
	}
	salt, err := os.ReadFile(saltPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, trace.ConvertSystemError(err)
		}
		salt = make([]byte, saltLen)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return nil, trace.Wrap(err, "generating salt")
		}
		if err := utils.WriteFileAtomic(saltPath, salt, 0o600); err != nil {
			return nil, trace.Wrap(err, "persisting salt")
		}
	}
	if len(salt) != saltLen {
		return nil, trace.BadParameter("salt file %q is malformed", saltPath)
	}
	return argon2.IDKey([]byte(password.Reveal()), salt, argonTime, argonMemory, argonThreads, masterKeyLen), nil
}

// DetectCipher decides whether the state file at path is encrypted and,
// if so, builds its Cipher. Plaintext state is always JSON, so anything
// not starting with '{' is treated as an encrypted blob. The key comes
// from SPLUNK_CONFIG_KEY when set, otherwise from the OS keyring.
func DetectCipher(path string, store secret.Store) (*Cipher, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, trace.ConvertSystemError(err)
	}
	trimmed := 0
	for trimmed < len(data) && (data[trimmed] == ' ' || data[trimmed] == '\n' || data[trimmed] == '\t' || data[trimmed] == '\r') {
		trimmed++
	}
	if trimmed < len(data) && data[trimmed] == '{' {
		return nil, nil
	}

	key, err := EnvMasterKey(EnvConfigKey)
	if trace.IsNotFound(err) {
		key, err = KeyringMasterKey(store)
	}
	if err != nil {
		return nil, trace.Wrap(err, "config file %q is encrypted but no master key is available", path)
	}
	cipher, err := NewCipher(key)
	return cipher, trace.Wrap(err)
}

// EnvMasterKey hex-decodes the master key from the named environment
// variable; the decoded key must be exactly 32 bytes.
func EnvMasterKey(name string) ([]byte, error) {
	value := os.Getenv(name)
	if value == "" {
		return nil, trace.NotFound("environment variable %s is not set", name)
	}
	key, err := hex.DecodeString(value)
	if err != nil {
		return nil, trace.BadParameter("environment variable %s is not valid hex", name)
	}
	if len(key) != masterKeyLen {
		return nil, trace.BadParameter("environment variable %s must decode to %d bytes, got %d", name, masterKeyLen, len(key))
	}
	return key, nil
}
