package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "9876543210", NormalizePhone("+91 98765-43210"))
	assert.Equal(t, "98765", NormalizePhone("98765"))
	assert.Equal(t, "", NormalizePhone("abc"))
}

func TestWhatsAppLink(t *testing.T) {
	link, err := WhatsAppLink("9876543210", "hello there")
	require.NoError(t, err)
	assert.Equal(t, "https://wa.me/919876543210?text=hello+there", link)
}

func TestWhatsAppLinkKeepsLastTenDigits(t *testing.T) {
	link, err := WhatsAppLink("+91 98765 43210", "hi")
	require.NoError(t, err)
	assert.Contains(t, link, "wa.me/919876543210")
}

func TestWhatsAppLinkRejectsShortNumbers(t *testing.T) {
	_, err := WhatsAppLink("98765", "hi")
	assert.ErrorIs(t, err, ErrInvalidPhone)

	_, err = WhatsAppLink("", "hi")
	assert.ErrorIs(t, err, ErrInvalidPhone)
}

func TestInvoiceMessage(t *testing.T) {
	msg := InvoiceMessage("Test Kirana", "INV-ABC123", 295)
	assert.Contains(t, msg, "Test Kirana")
	assert.Contains(t, msg, "INV-ABC123")
	assert.Contains(t, msg, "295.00")
}