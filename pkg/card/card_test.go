package card

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLuhn(t *testing.T) {
	assert.True(t, Luhn("4111111111111111"))
	assert.True(t, Luhn("5555555555554444"))
	assert.True(t, Luhn("2223003122003222"))
	assert.False(t, Luhn("4111111111111112"))
	assert.False(t, Luhn("41111111abc11111"))
	assert.False(t, Luhn(""))
}

func TestDetectBrand(t *testing.T) {
	assert.Equal(t, BrandVisa, DetectBrand("4111111111111111"))
	assert.Equal(t, BrandMastercard, DetectBrand("5105105105105100"))
	assert.Equal(t, BrandMastercard, DetectBrand("2223003122003222"))
	assert.Equal(t, Brand(""), DetectBrand("378282246310005"))
	assert.Equal(t, Brand(""), DetectBrand("6011111111111117"))
}

func TestValidateNumber(t *testing.T) {
	digits, brand, err := ValidateNumber("4111 1111 1111 1111")
	require.NoError(t, err)
	assert.Equal(t, "4111111111111111", digits)
	assert.Equal(t, BrandVisa, brand)

	_, _, err = ValidateNumber("4111-1111-1111-1112")
	assert.ErrorIs(t, err, ErrInvalidNumber)

	_, _, err = ValidateNumber("4111")
	assert.ErrorIs(t, err, ErrInvalidNumber)

	// valid Luhn, unsupported network
	_, _, err = ValidateNumber("378282246310005")
	assert.ErrorIs(t, err, ErrUnsupportedBrand)
}

func TestValidateExpiry(t *testing.T) {
	now := time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, ValidateExpiry(6, 2026, now))
	assert.NoError(t, ValidateExpiry(1, 2027, now))
	assert.ErrorIs(t, ValidateExpiry(5, 2026, now), ErrExpired)
	assert.ErrorIs(t, ValidateExpiry(12, 2025, now), ErrExpired)
	assert.ErrorIs(t, ValidateExpiry(13, 2027, now), ErrInvalidExpiry)
	assert.ErrorIs(t, ValidateExpiry(0, 2027, now), ErrInvalidExpiry)
}

func TestValidateCVV(t *testing.T) {
	assert.NoError(t, ValidateCVV("123"))
	assert.NoError(t, ValidateCVV("1234"))
	assert.ErrorIs(t, ValidateCVV("12"), ErrInvalidCVV)
	assert.ErrorIs(t, ValidateCVV("12a"), ErrInvalidCVV)
	assert.ErrorIs(t, ValidateCVV("12345"), ErrInvalidCVV)
}

func TestMask(t *testing.T) {
	assert.Equal(t, "************1111", Mask("4111111111111111"))
	assert.Equal(t, "123", Mask("123"))
}
