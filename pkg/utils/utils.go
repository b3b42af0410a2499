package utils

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/gofiber/fiber/v2"
)

type Map map[string]string

func GenerateOTP() (int64, error) {
	max := big.NewInt(99999999) // 8 digits max
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return 0, fmt.Errorf("failed to generate OTP: %w", err)
	}
	otp := n.Int64()
	// Ensure 8 digits by padding if needed
	if otp < 10000000 {
		otp += 10000000
	}
	return otp, nil
}

const tokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRandomToken returns a random token whose length falls between min and max.
func GenerateRandomToken(min, max int) (string, error) {
	span := big.NewInt(int64(max - min + 1))
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", fmt.Errorf("failed to pick token length: %w", err)
	}
	length := min + int(n.Int64())

	token := make([]byte, length)
	for i := range token {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(tokenAlphabet))))
		if err != nil {
			return "", fmt.Errorf("failed to generate token: %w", err)
		}
		token[i] = tokenAlphabet[idx.Int64()]
	}
	return string(token), nil
}

// StrictBodyParser parses the request body strictly and returns an error if the body contains unknown fields.
func StrictBodyParser(c *fiber.Ctx, out interface{}) error {
	decoder := json.NewDecoder(bytes.NewReader(c.Body()))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return err
	}
	return nil
}

// Contains checks if a string exists in a slice of strings.
func Contains(arr []string, str string) bool {
	for _, a := range arr {
		if a == str {
			return true
		}
	}
	return false
}
