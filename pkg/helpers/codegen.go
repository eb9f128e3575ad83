package helpers

import (
	"crypto/rand"
	"math/big"
)

var codeSpan = big.NewInt(900000)

// GenRecoveryCode generates a uniformly random 6-digit recovery code in
// [100000, 999999]. crypto/rand's Int is rejection-sampled, so the
// distribution carries no modulo bias.
func GenRecoveryCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpan)
	if err != nil {
		return "", err
	}
	v := n.Int64() + 100000
	return big.NewInt(v).String(), nil
}
