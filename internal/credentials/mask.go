package credentials

import "strings"

const (
	maskCharacterConstant            = "*"
	maskedPrefixLengthConstant       = 8
	maskRevealThresholdConstant      = 8
	maskRevealedSuffixLengthConstant = 4
)

// Mask hides a secret behind a fixed run of asterisks. Tokens longer than eight
// characters keep their last four characters visible; shorter tokens are masked entirely.
func Mask(token string) string {
	maskedPrefix := strings.Repeat(maskCharacterConstant, maskedPrefixLengthConstant)
	if len(token) <= maskRevealThresholdConstant {
		return maskedPrefix
	}
	return maskedPrefix + token[len(token)-maskRevealedSuffixLengthConstant:]
}
