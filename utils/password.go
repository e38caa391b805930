package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 8

var commonPasswords = map[string]struct{}{}

func init() {
	for _, p := range strings.Fields(`
		123456 123456789 12345678 1234567890 password password1 password123 qwerty qwerty123
		qwertyuiop abc123 111111 000000 iloveyou letmein welcome welcome1 admin admin123
		administrator monkey dragon football baseball sunshine princess master shadow
		superman michael trustno1 passw0rd 1q2w3e4r 1qaz2wsx zaq12wsx starwars whatever
		changeme secret secret123 computer internet freedom hello123 login restaurant
	`) {
		commonPasswords[p] = struct{}{}
	}
}

// HashPassword returns a bcrypt hash of plain.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword compares a bcrypt hash and a plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

var attributeSplit = regexp.MustCompile(`\W+`)

// ValidatePassword applies the password rules and returns every failure
// under the "password" field. attributes are the user's own values (employee
// ID, first and last name) that the password must not resemble.
func ValidatePassword(password string, maxSimilarity float64, attributes ...string) *ValidationError {
	verr := &ValidationError{}

	if len([]rune(password)) < MinPasswordLength {
		verr.Add("password", "This password is too short. It must contain at least 8 characters.", CodePassword)
	}
	if _, ok := commonPasswords[strings.ToLower(strings.TrimSpace(password))]; ok {
		verr.Add("password", "This password is too common.", CodePassword)
	}
	if password != "" && strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) < 0 {
		verr.Add("password", "This password is entirely numeric.", CodePassword)
	}

	lower := strings.ToLower(password)
	for _, attr := range attributes {
		attr = strings.ToLower(attr)
		if attr == "" {
			continue
		}
		parts := append(attributeSplit.Split(attr, -1), attr)
		for _, part := range parts {
			if part != "" && quickRatio(lower, part) >= maxSimilarity {
				verr.Add("password", "The password is too similar to your personal details.", CodePassword)
				return verr
			}
		}
	}
	return verr
}

// quickRatio is an upper bound on the similarity of a and b: twice the size
// of their character multiset intersection over their combined length.
func quickRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra)+len(rb) == 0 {
		return 1
	}
	avail := make(map[rune]int, len(rb))
	for _, r := range rb {
		avail[r]++
	}
	matches := 0
	for _, r := range ra {
		if avail[r] > 0 {
			avail[r]--
			matches++
		}
	}
	return 2 * float64(matches) / float64(len(ra)+len(rb))
}
