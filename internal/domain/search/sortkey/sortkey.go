package sortkey

import (
	"fmt"
	"strings"
)

// Key is the result ordering.
type Key string

// Sort key constants.
const (
	// Relevance puts exact name matches first, then rating and review count.
	Relevance Key = "relevance"
	Distance  Key = "distance"
	Rating    Key = "rating"
	Price     Key = "price"
)

// IsValid checks if the key is one of the supported values.
func (k Key) IsValid() bool {
	return k == Relevance || k == Distance || k == Rating || k == Price
}

// Parse converts caller text into a Key (case-insensitive).
func Parse(s string) (Key, error) {
	k := Key(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", fmt.Errorf("invalid sort key %q (want relevance, distance, rating or price)", s)
	}
	return k, nil
}
