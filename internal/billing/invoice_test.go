package billing

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInvoiceNumberFormat(t *testing.T) {
	at := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	number := NewInvoiceNumber(at)

	require.True(t, strings.HasPrefix(number, "INV-"))
	token := strings.TrimPrefix(number, "INV-")
	assert.Equal(t, strings.ToUpper(token), token)

	millis, err := strconv.ParseInt(strings.ToLower(token), 36, 64)
	require.NoError(t, err)
	assert.Equal(t, at.UnixMilli(), millis)
}

func TestNewInvoiceNumberDistinguishesMilliseconds(t *testing.T) {
	at := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	a := NewInvoiceNumber(at)
	b := NewInvoiceNumber(at.Add(time.Millisecond))
	assert.NotEqual(t, a, b)

	// same instant yields the same number; uniqueness rides on the clock
	assert.Equal(t, a, NewInvoiceNumber(at))
}
