package booking

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"time"
)

const referenceAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

const referenceSuffixLen = 4

// DefaultPrefix starts every booking reference unless configured otherwise.
const DefaultPrefix = "BHS"

// NewReference builds PREFIX-YYYYMMDD-XXXX from the date of now and
// four base-36 characters read from random.
func NewReference(prefix string, now time.Time, random io.Reader) (string, error) {
	if random == nil {
		random = rand.Reader
	}
	max := big.NewInt(int64(len(referenceAlphabet)))
	suffix := make([]byte, referenceSuffixLen)
	for i := range suffix {
		n, err := rand.Int(random, max)
		if err != nil {
			return "", fmt.Errorf("generate reference: %w", err)
		}
		suffix[i] = referenceAlphabet[n.Int64()]
	}
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102"), suffix), nil
}
