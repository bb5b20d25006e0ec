package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// Length of every identifier issued by New.
const Length = 16

// New returns a 16-character identifier: the last two timestamp characters
// followed by the 80-bit random segment of a fresh ULID. Identifiers fit the
// VARCHAR(16) key columns and are safe to embed in cache keys.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()[ulid.EncodedSize-Length:]
}
