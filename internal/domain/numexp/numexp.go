// Package numexp converts numeric literals into a canonical exponential
// notation so that equal numbers written differently share one id.
package numexp

import (
	"math/big"
	"regexp"
	"strings"
)

var literal = regexp.MustCompile(`^([+-])?([0-9.]+)(?:[eE]([+-]?[0-9]+))?$`)

// ToExponential returns the canonical form of a decimal literal, e.g.
// "10.5" and "0.105E2" both give "1.05e+1", and "000" gives "0e+0".
// Precision and exponent size are unbounded. The second result is false
// for anything that is not a number (multiple dots, stray characters).
func ToExponential(s string) (string, bool) {
	m := literal.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	sign, digits, expStr := m[1], m[2], m[3]
	if strings.Count(digits, ".") > 1 {
		return "", false
	}

	point := strings.IndexByte(digits, '.')
	if point < 0 {
		point = len(digits)
	}
	u := strings.Replace(digits, ".", "", 1)
	if u == "" {
		return "", false
	}

	lead := strings.IndexFunc(u, func(r rune) bool { return r != '0' })
	if lead < 0 {
		return "0e+0", true
	}

	exp := new(big.Int)
	if expStr != "" {
		if _, ok := exp.SetString(strings.TrimPrefix(expStr, "+"), 10); !ok {
			return "", false
		}
	}
	exp.Add(exp, big.NewInt(int64(point-1-lead)))

	mant := strings.TrimRight(u[lead:], "0")
	if len(mant) > 1 {
		mant = mant[:1] + "." + mant[1:]
	}

	var b strings.Builder
	if sign == "-" {
		b.WriteByte('-')
	}
	b.WriteString(mant)
	b.WriteByte('e')
	if exp.Sign() >= 0 {
		b.WriteByte('+')
	}
	b.WriteString(exp.String())
	return b.String(), true
}
