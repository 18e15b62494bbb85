package testutil

import (
	random "github.com/mazen160/go-random"
)

// RandomToken generates a random alphanumeric string for fixture ids
// and fake bearer tokens.
func RandomToken(length int) string {
	s, err := random.String(length)
	if err != nil {
		panic(err)
	}
	return s
}
