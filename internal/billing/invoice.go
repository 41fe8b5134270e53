package billing

import (
	"strconv"
	"strings"
	"time"
)

const invoicePrefix = "INV-"

// NewInvoiceNumber derives an invoice number from the given time: the
// prefix plus the uppercase base-36 form of the millisecond timestamp.
// There is no central sequence and no uniqueness check; at human checkout
// pace a millisecond clock makes collisions negligible, and numbers are
// neither gap-free nor strictly ordered across registers.
func NewInvoiceNumber(t time.Time) string {
	token := strconv.FormatInt(t.UnixMilli(), 36)
	return invoicePrefix + strings.ToUpper(token)
}
