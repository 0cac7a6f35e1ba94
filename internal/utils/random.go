package utils

import (
	"crypto/rand"
	"math/big"
)

const voucherCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateVoucherCode returns a redemption voucher code. Ambiguous characters
// (0/O, 1/I) are excluded from the charset.
func GenerateVoucherCode(length int) string {
	return generateRandom(length, voucherCharset)
}

func generateRandom(length int, charset string) string {
	result := make([]byte, length)
	charsetLength := big.NewInt(int64(len(charset)))

	for i := range result {
		num, _ := rand.Int(rand.Reader, charsetLength)
		result[i] = charset[num.Int64()]
	}

	return string(result)
}
