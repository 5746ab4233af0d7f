package memes

import (
	"fmt"

	"github.com/muandane/special-stack/memes/internal/transform"
)

const keyPrefix = "meme:"

// normalize maps negative bounds to zero, i.e. "no constraint".
func normalize(opts transform.Options) transform.Options {
	return transform.Options{Width: max(opts.Width, 0), Height: max(opts.Height, 0)}
}

// DeriveKey builds the store key for a content hash and resize bounds. The
// unresized variant is "meme:<hash>"; any bound adds ":w<W>:h<H>". Hashes are
// hex so the separator cannot appear inside them.
func DeriveKey(hash string, opts transform.Options) string {
	opts = normalize(opts)
	if !opts.Resizes() {
		return keyPrefix + hash
	}
	return fmt.Sprintf("%s%s:w%d:h%d", keyPrefix, hash, opts.Width, opts.Height)
}
