// Package card validates and masks payment card data.
package card

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Brand is a supported card network.
type Brand string

const (
	BrandVisa       Brand = "visa"
	BrandMastercard Brand = "mastercard"
)

var (
	ErrInvalidNumber    = errors.New("invalid card number")
	ErrUnsupportedBrand = errors.New("only Visa and Mastercard are supported")
	ErrExpired          = errors.New("card has expired")
	ErrInvalidExpiry    = errors.New("invalid expiry date")
	ErrInvalidCVV       = errors.New("invalid CVV")
)

var (
	cvvPattern        = regexp.MustCompile(`^\d{3,4}$`)
	visaPattern       = regexp.MustCompile(`^4`)
	mastercardPattern = regexp.MustCompile(`^(5[1-5]|2[2-7])`)
)

// Normalize strips spaces and dashes from a card number.
func Normalize(number string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(number)
}

// Luhn reports whether digits passes the Luhn checksum. Non-digit input fails.
func Luhn(digits string) bool {
	if digits == "" {
		return false
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		c := digits[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// DetectBrand returns the card network for number, or "" if unsupported.
func DetectBrand(number string) Brand {
	switch {
	case visaPattern.MatchString(number):
		return BrandVisa
	case mastercardPattern.MatchString(number):
		return BrandMastercard
	default:
		return ""
	}
}

// ValidateNumber normalizes number and checks length, checksum and brand.
func ValidateNumber(number string) (string, Brand, error) {
	digits := Normalize(number)
	if len(digits) < 13 || len(digits) > 19 || !Luhn(digits) {
		return "", "", ErrInvalidNumber
	}
	brand := DetectBrand(digits)
	if brand == "" {
		return "", "", ErrUnsupportedBrand
	}
	return digits, brand, nil
}

// ValidateExpiry rejects out-of-range months and cards that expired before now's month.
func ValidateExpiry(month, year int, now time.Time) error {
	if month < 1 || month > 12 || year < 2000 || year > 2100 {
		return ErrInvalidExpiry
	}
	if year < now.Year() || (year == now.Year() && month < int(now.Month())) {
		return ErrExpired
	}
	return nil
}

// ValidateCVV checks for 3 or 4 digits.
func ValidateCVV(cvv string) error {
	if !cvvPattern.MatchString(cvv) {
		return ErrInvalidCVV
	}
	return nil
}

// Mask replaces every digit except the last four with '*'.
func Mask(digits string) string {
	if len(digits) <= 4 {
		return digits
	}
	return strings.Repeat("*", len(digits)-4) + digits[len(digits)-4:]
}
