package validation

import (
	"errors"
	"strconv"
	"strings"
)

// NormalizeRUT strips dots and spaces and upper-cases the check digit,
// returning the canonical "12345678-K" form.
func NormalizeRUT(rut string) string {
	r := strings.ToUpper(strings.TrimSpace(rut))
	r = strings.NewReplacer(".", "", " ", "").Replace(r)
	if r == "" {
		return ""
	}
	if !strings.Contains(r, "-") && len(r) > 1 {
		r = r[:len(r)-1] + "-" + r[len(r)-1:]
	}
	return r
}

// ValidateRUT checks a Chilean RUT using the modulo 11 check digit.
func ValidateRUT(rut string) error {
	r := NormalizeRUT(rut)
	parts := strings.Split(r, "-")
	if len(parts) != 2 || parts[0] == "" || len(parts[1]) != 1 {
		return errors.New("RUT must have the form 12345678-9")
	}
	if len(parts[0]) < 7 || len(parts[0]) > 8 {
		return errors.New("RUT number must have 7 or 8 digits")
	}
	body, err := strconv.Atoi(parts[0])
	if err != nil || body <= 0 {
		return errors.New("RUT number must be numeric")
	}
	if rutCheckDigit(body) != parts[1] {
		return errors.New("invalid RUT check digit")
	}
	return nil
}

func rutCheckDigit(body int) string {
	sum, mul := 0, 2
	for ; body > 0; body /= 10 {
		sum += (body % 10) * mul
		mul++
		if mul > 7 {
			mul = 2
		}
	}
	switch dv := 11 - sum%11; dv {
	case 11:
		return "0"
	case 10:
		return "K"
	default:
		return strconv.Itoa(dv)
	}
}

// FormatRUT builds the canonical RUT for body, including its check digit.
func FormatRUT(body int) string {
	return strconv.Itoa(body) + "-" + rutCheckDigit(body)
}
