// Package core defines the record model and the derived analytics.
//
// This file contains the fixed-point decimal used for dosages and weights.
// Values are stored as hundredths to keep the 0.25 mg and 0.1 lb steps exact;
// use Float64 only for display and chart output.
package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Decimal is a positive fixed-point value with two decimal places.
type Decimal struct {
	Hundredths int64
}

var ErrInvalidDecimal = errors.New("invalid decimal value")

// ParseDecimal converts a decimal string to hundredths with half-up rounding
// on the third decimal place. Both dot (0.25) and comma (0,25) separators are
// accepted. Only strictly positive values are valid.
//
// Examples:
//
//	ParseDecimal("0.25")  -> {25}, nil
//	ParseDecimal("178,5") -> {17850}, nil
//	ParseDecimal("1.005") -> {101}, nil (rounds up)
func ParseDecimal(s string) (Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Decimal{}, ErrInvalidDecimal
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Decimal{}, ErrInvalidDecimal
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Decimal{}, ErrInvalidDecimal
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return Decimal{}, ErrInvalidDecimal
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return Decimal{}, ErrInvalidDecimal
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Decimal{}, ErrInvalidDecimal
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return Decimal{}, ErrInvalidDecimal
	}
	var frac int64
	if len(fracPart) > 0 {
		frac = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			frac += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				frac++
			}
		}
	}
	v := iv*100 + frac
	if v <= 0 {
		return Decimal{}, ErrInvalidDecimal
	}
	return Decimal{Hundredths: v}, nil
}

// Float64 returns the value for display and chart serialization.
func (d Decimal) Float64() float64 {
	return float64(d.Hundredths) / 100.0
}

// String formats with up to two decimal places, trailing zeros trimmed
// ("0.25", "178.5", "180").
func (d Decimal) String() string {
	neg := d.Hundredths < 0
	h := d.Hundredths
	if neg {
		h = -h
	}
	s := fmt.Sprintf("%d.%02d", h/100, h%100)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if neg {
		return "-" + s
	}
	return s
}

// Sub returns d minus other. The result may be negative; used for the
// weight-change statistic only.
func (d Decimal) Sub(other Decimal) Decimal {
	return Decimal{Hundredths: d.Hundredths - other.Hundredths}
}
