// Package txid generates human-readable purchase transaction identifiers.
package txid

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// DefaultPrefix is prepended to every transaction id.
const DefaultPrefix = "METRO-"

// Length is the number of random characters after the prefix.
const Length = 8

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Generator produces ids of the form PREFIX + 8 uppercase base-36 characters.
type Generator struct {
	prefix string
}

// New creates a Generator. An empty prefix falls back to DefaultPrefix.
func New(prefix string) *Generator {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Generator{prefix: prefix}
}

// NewTransactionID returns a fresh id.
func (g *Generator) NewTransactionID() string {
	var b strings.Builder
	b.Grow(len(g.prefix) + Length)
	b.WriteString(g.prefix)

	base := big.NewInt(int64(len(alphabet)))
	for i := 0; i < Length; i++ {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic("txid: read random: " + err.Error())
		}
		b.WriteByte(alphabet[n.Int64()])
	}
	return b.String()
}
