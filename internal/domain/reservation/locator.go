package reservation

import (
	"context"
	"fmt"
	"math/rand"
)

const (
	// LocatorLength is the standard booking code length.
	LocatorLength = 6
	// ExtendedLocatorLength is used after repeated collisions.
	ExtendedLocatorLength = 8

	locatorAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	locatorProbes   = 10
)

// GenerateLocator produces a booking code not currently in use. exists is
// consulted once per candidate; after ten collisions an 8-character code
// is returned without a further probe, collision probability being
// negligible at that length. Only probe failures are reported as errors.
func GenerateLocator(ctx context.Context, exists func(context.Context, string) (bool, error)) (string, error) {
	for i := 0; i < locatorProbes; i++ {
		code := randomLocator(LocatorLength)
		used, err := exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("locator uniqueness probe failed: %w", err)
		}
		if !used {
			return code, nil
		}
	}
	return randomLocator(ExtendedLocatorLength), nil
}

func randomLocator(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = locatorAlphabet[rand.Intn(len(locatorAlphabet))]
	}
	return string(b)
}
