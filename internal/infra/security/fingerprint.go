package security

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// FingerprintConfig configures the Argon2id parameters used to derive cache keys.
type FingerprintConfig struct {
	Pepper      string
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	KeyLength   uint32
}

// DefaultFingerprintConfig keeps derivation cheap enough for per-request use.
func DefaultFingerprintConfig() FingerprintConfig {
	return FingerprintConfig{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		KeyLength:   32,
	}
}

// Fingerprinter derives deterministic, non-reversible keys from passwords.
type Fingerprinter struct {
	cfg  FingerprintConfig
	salt []byte
}

// NewFingerprinter validates the configuration and builds a Fingerprinter.
func NewFingerprinter(cfg FingerprintConfig) (*Fingerprinter, error) {
	defaults := DefaultFingerprintConfig()
	if cfg.Memory == 0 {
		cfg.Memory = defaults.Memory
	}
	if cfg.Iterations == 0 {
		cfg.Iterations = defaults.Iterations
	}
	if cfg.Parallelism == 0 {
		cfg.Parallelism = defaults.Parallelism
	}
	if cfg.KeyLength == 0 {
		cfg.KeyLength = defaults.KeyLength
	}
	if cfg.KeyLength < 16 {
		return nil, fmt.Errorf("fingerprint key length must be at least 16 bytes, got %d", cfg.KeyLength)
	}
	if len(cfg.Pepper) < 8 {
		return nil, fmt.Errorf("fingerprint pepper must be at least 8 bytes")
	}

	return &Fingerprinter{cfg: cfg, salt: []byte(cfg.Pepper)}, nil
}

// Fingerprint returns the hex-encoded Argon2id key for the password and its user inputs.
// Every part is length-prefixed so no split of the same bytes yields the same key.
func (f *Fingerprinter) Fingerprint(password string, userInputs ...string) string {
	material := appendPart(nil, password)
	for _, input := range userInputs {
		material = appendPart(material, strings.ToLower(strings.TrimSpace(input)))
	}

	key := argon2.IDKey(material, f.salt, f.cfg.Iterations, f.cfg.Memory, f.cfg.Parallelism, f.cfg.KeyLength)
	return hex.EncodeToString(key)
}

func appendPart(buf []byte, part string) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(part)))
	return append(buf, part...)
}
