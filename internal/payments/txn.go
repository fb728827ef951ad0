package payment

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const transactionIDPrefix = "JMART_TXN"

// newTransactionID builds the merchant transaction reference: millisecond
// timestamp plus a random suffix. Generated before any gateway call so a
// failed initiation still leaves a traceable id.
func newTransactionID(now time.Time) string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000))
	if err != nil {
		n = big.NewInt(now.UnixNano() % 1000)
	}
	return fmt.Sprintf("%s%d%03d", transactionIDPrefix, now.UnixMilli(), n.Int64())
}
