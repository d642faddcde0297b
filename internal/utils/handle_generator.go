package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

var qualities = []string{
	"Keen", "Steady", "Sharp", "Quick", "Patient",
	"Deft", "Precise", "Nimble", "Focused", "Seasoned",
	"Crafty", "Diligent", "Astute", "Tireless", "Versed",
}

var trades = []string{
	"Builder", "Drafter", "Coder", "Smith", "Weaver",
	"Scribe", "Mason", "Artisan", "Engineer", "Maker",
	"Designer", "Architect", "Tinker", "Crafter", "Planner",
}

// GenerateHandle creates a random public handle in the format
// "Quality_Trade_XXXX" where XXXX is a random 4-digit number
func GenerateHandle() (string, error) {
	qualityIdx, err := rand.Int(rand.Reader, big.NewInt(int64(len(qualities))))
	if err != nil {
		return "", fmt.Errorf("failed to generate random quality: %w", err)
	}

	tradeIdx, err := rand.Int(rand.Reader, big.NewInt(int64(len(trades))))
	if err != nil {
		return "", fmt.Errorf("failed to generate random trade: %w", err)
	}

	suffix, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("failed to generate random suffix: %w", err)
	}

	handle := fmt.Sprintf("%s_%s_%04d",
		qualities[qualityIdx.Int64()],
		trades[tradeIdx.Int64()],
		suffix.Int64(),
	)

	return handle, nil
}
