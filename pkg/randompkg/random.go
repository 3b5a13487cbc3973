// Package randompkg provides functionality gor generating random applications common items.
package randompkg

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	alphabet = "abcdefghijklmnopqrstuvwxyz"
	digits   = "0123456789"
)

// Intn is a shortcut for generating a random integer between 0 and max using crypto/rand.
func Intn(max int) int64 {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		panic(err)
	}

	return nBig.Int64()
}

// IntBetween generates a random integer between min and max, both included.
func IntBetween(min, max int) int64 {
	return int64(min) + Intn(max-min+1)
}

func fromSet(set string, n int) string {
	var sb strings.Builder

	k := len(set)

	for i := 0; i < n; i++ {
		_ = sb.WriteByte(set[Intn(k)]) // The returned err is always nil.
	}

	return sb.String()
}

// String generates a random string of length n.
func String(n int) string {
	return fromSet(alphabet, n)
}

// Owner generates a random owner name.
func Owner() string {
	return String(6)
}

// Symbol generates a random Shanghai style six digit instrument code.
func Symbol() string {
	return "6" + fromSet(digits, 5)
}

// AmountBetween generates a random amount between min and max with two decimals.
func AmountBetween(min, max int) decimal.Decimal {
	cents := IntBetween(min*100, max*100)
	return decimal.New(cents, -2)
}

// Rate generates a random annual rate between 0.0100 and 0.0500.
func Rate() decimal.Decimal {
	return decimal.New(IntBetween(100, 500), -4)
}

// AssetName generates a random asset name.
func AssetName() string {
	return fmt.Sprintf("asset-%s", String(8))
}
