package uploads

import (
	"crypto/sha256"
	"encoding/hex"
	"path"

	"github.com/JaimeStill/depot/pkg/staging"
)

// DeriveKey returns the remote object key for fileName:
// systemName/YYYYMMDD/sha256(systemName + unix + draw + fileName).ext
//
// The hash input includes the clock and a random draw, so the same file
// transferred twice gets two keys. A name without an extension yields a
// key without one.
func DeriveKey(src staging.Source, systemName, fileName string) string {
	sum := sha256.Sum256([]byte(systemName + src.Suffix() + fileName))
	name := hex.EncodeToString(sum[:])

	if _, ext := staging.SplitName(fileName); ext != "" {
		name += "." + ext
	}

	return path.Join(systemName, src.DateStamp(), name)
}
