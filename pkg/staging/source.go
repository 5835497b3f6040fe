// Package staging resolves collision-resistant staging paths and persists
// uploaded content into a date-partitioned local directory tree.
//
// Files for one logical system land in baseDir/systemName/YYYYMMDD. Names
// are suffixed with the unix timestamp and a four digit random draw unless
// the caller explicitly asks to overwrite.
package staging

import (
	"math/rand/v2"
	"strconv"
	"time"
)

// DateLayout formats the date partition of staging directories and object keys.
const DateLayout = "20060102"

const (
	randomMin = 1000
	randomMax = 9999
)

// Source supplies the wall clock and random draws used by path and key derivation.
// Tests replace both to make derived names deterministic.
type Source struct {
	Now    func() time.Time
	Random func() int
}

// DefaultSource returns a Source backed by the local wall clock and
// a random draw in [1000, 9999].
func DefaultSource() Source {
	return Source{
		Now: time.Now,
		Random: func() int {
			return randomMin + rand.IntN(randomMax-randomMin+1)
		},
	}
}

// Time returns the current time.
func (s Source) Time() time.Time {
	return s.now()
}

// DateStamp returns the current date as YYYYMMDD.
func (s Source) DateStamp() string {
	return s.now().Format(DateLayout)
}

// Unix returns the current time as unix seconds.
func (s Source) Unix() int64 {
	return s.now().Unix()
}

// Draw returns a random value in [1000, 9999].
func (s Source) Draw() int {
	if s.Random == nil {
		return DefaultSource().Random()
	}
	return s.Random()
}

// Suffix returns the unix timestamp followed by a random draw, e.g. 17000000001234.
func (s Source) Suffix() string {
	return strconv.FormatInt(s.Unix(), 10) + strconv.Itoa(s.Draw())
}

func (s Source) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
