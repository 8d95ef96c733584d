// Package id generates compact identifiers for domain entities.
package id

import (
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewID returns a new random identifier: a UUIDv4 encoded as 26 lowercase
// base32 characters without padding.
func NewID() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	encoded := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(u[:])
	return strings.ToLower(encoded), nil
}
