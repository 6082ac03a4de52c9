package machine

import (
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/pbkdf2"
)

const (
	strengthenIterations = 200000
	strengthenKeyLen     = 32
	saltLen              = 16
)

// strengthenKey stretches the user key phrase with PBKDF2-SHA256 and returns
// the base64 form, a fixed 44-character string all further derivations run
// from.
func strengthenKey(keyPhrase string, salt []byte) string {
	key := pbkdf2.Key([]byte(keyPhrase), salt, strengthenIterations, strengthenKeyLen, sha256.New)
	return base64.StdEncoding.EncodeToString(key)
}

// defaultSalt derives a salt from the key phrase itself, keeping the whole
// machine reproducible from the shared secret when no salt channel exists.
func defaultSalt(keyPhrase string) []byte {
	sum := sha256.Sum256([]byte("cubigma/salt|" + keyPhrase))
	return sum[:saltLen]
}

// splitKeySegments cuts the strengthened key into one segment per active
// rotor, the trailing segment absorbing the remainder.  Each rotor steps
// from its own segment.
func splitKeySegments(key string, parts int) []string {
	if parts < 1 {
		parts = 1
	}
	seg := len(key) / parts
	out := make([]string, parts)
	for i := 0; i < parts; i++ {
		start := seg * i
		end := seg * (i + 1)
		if i == parts-1 {
			end = len(key)
		}
		out[i] = key[start:end]
	}
	return out
}

// runeSum folds a string's code points into one integer used by the stepping
// derivation.
func runeSum(s string) int64 {
	var sum int64
	for _, r := range s {
		sum += int64(r)
	}
	return sum
}
