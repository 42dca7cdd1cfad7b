package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// base36 digits used for ticket number suffixes.
const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// suffixLen gives ~46 bits of entropy per suffix, enough that a
// collision across one deployment's lifetime is negligible.  The
// tickets.ticket_number column additionally carries a unique index, so
// an astronomically unlucky collision fails the batch insert instead
// of silently issuing two tickets with the same code.
const suffixLen = 9

// NewTicketNumber generates a human-displayable, practically unique
// ticket code of the form TKT-<unix-ms>-<random base36 suffix>.  The
// suffix comes from a cryptographically strong random source.
func NewTicketNumber() (string, error) {
	suffix := make([]byte, suffixLen)
	max := big.NewInt(int64(len(base36)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		suffix[i] = base36[n.Int64()]
	}
	return fmt.Sprintf("TKT-%d-%s", time.Now().UTC().UnixMilli(), suffix), nil
}
