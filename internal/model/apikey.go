package model

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"math/big"
	"strings"
)

const apiKeyAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ1234567890"

// API key shape: four groups of seven alphanumerics joined by dashes.
const (
	apiKeyGroups    = 4
	apiKeyGroupSize = 7
)

// GenerateAPIKey generates a new random API key. Only one key is valid at
// a time; storing a freshly generated key invalidates the prior value.
func GenerateAPIKey() (string, error) {
	groups := make([]string, 0, apiKeyGroups)
	var sb strings.Builder
	for g := 0; g < apiKeyGroups; g++ {
		sb.Reset()
		for i := 0; i < apiKeyGroupSize; i++ {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(apiKeyAlphabet))))
			if err != nil {
				return "", err
			}
			sb.WriteByte(apiKeyAlphabet[n.Int64()])
		}
		groups = append(groups, sb.String())
	}
	return strings.Join(groups, "-"), nil
}

// AuthorFingerprint derives the in-request deduplication key for an
// inbound author: a hash over email concatenated with full name. It is
// never persisted; repeated imports across separate calls will create
// duplicate users unless the caller supplies an explicit author ID.
func AuthorFingerprint(email, fullName string) string {
	sum := sha256.Sum256([]byte(email + fullName))
	return hex.EncodeToString(sum[:])
}
