package assist

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karvyapaar/karvyapaar/internal/platform/httpx"
)

// fakeGateway serves a canned chat completion reply and records the request.
func fakeGateway(t *testing.T, status int, content string) (*httptest.Server, *string) {
	t.Helper()
	var lastBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		lastBody = string(body)

		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":` + jsonString(content) + `}}]}`))
	}))
	t.Cleanup(server.Close)
	return server, &lastBody
}

func jsonString(s string) string {
	out := strings.NewReplacer("\\", "\\\\", "\"", "\\\"", "\n", "\\n").Replace(s)
	return `"` + out + `"`
}

func newTestService(server *httptest.Server) *Service {
	client := NewClient(server.URL, "test-key", 5*time.Second)
	return NewService(slog.New(slog.DiscardHandler), client)
}

func TestScanBillParsesFencedJSON(t *testing.T) {
	reply := "```json\n{\"entries\":[{\"name\":\"Rice\",\"quantity\":25,\"unit\":\"kg\",\"price\":60,\"category\":\"Grocery\"}],\"notes\":\"one line unclear\"}\n```"
	server, _ := fakeGateway(t, http.StatusOK, reply)
	svc := newTestService(server)

	result, err := svc.ScanBill(context.Background(), "aGVsbG8=")
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, "Rice", result.Entries[0].Name)
	assert.Equal(t, 25, result.Entries[0].Quantity)
	assert.Equal(t, "one line unclear", result.Notes)
}

func TestScanBillDegradesOnUnparseableReply(t *testing.T) {
	server, _ := fakeGateway(t, http.StatusOK, "Sorry, I could not read the image clearly.")
	svc := newTestService(server)

	result, err := svc.ScanBill(context.Background(), "aGVsbG8=")
	require.NoError(t, err)
	assert.Empty(t, result.Entries)
	assert.Contains(t, result.Notes, "could not read")
	assert.NotEmpty(t, result.Error)
}

func TestScanBillValidation(t *testing.T) {
	server, _ := fakeGateway(t, http.StatusOK, "{}")
	svc := newTestService(server)

	_, err := svc.ScanBill(context.Background(), "")
	assert.ErrorIs(t, err, ErrImageRequired)

	_, err = svc.ScanBill(context.Background(), strings.Repeat("A", MaxImageBytes+1))
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestVoiceCommandParsesAction(t *testing.T) {
	reply := `{"action":"ADD_STOCK","items":[{"name":"Sugar","quantity":5,"unit":"kg"}],"confidence":0.92,"originalText":"5 kilo cheeni stock mein dalo","interpretation":"Add 5 kg sugar to inventory"}`
	server, body := fakeGateway(t, http.StatusOK, reply)
	svc := newTestService(server)

	result, err := svc.VoiceCommand(context.Background(), "5 kilo cheeni stock mein dalo", "hi")
	require.NoError(t, err)
	assert.Equal(t, ActionAddStock, result.Action)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Sugar", result.Items[0].Name)
	assert.Contains(t, *body, "language: hi")
}

func TestVoiceCommandFallsBackToUnknown(t *testing.T) {
	server, _ := fakeGateway(t, http.StatusOK, "I think you want to add sugar?")
	svc := newTestService(server)

	result, err := svc.VoiceCommand(context.Background(), "mumble mumble", "")
	require.NoError(t, err)
	assert.Equal(t, ActionUnknown, result.Action)
	assert.Equal(t, "mumble mumble", result.OriginalText)
}

func TestVoiceCommandValidation(t *testing.T) {
	server, _ := fakeGateway(t, http.StatusOK, "{}")
	svc := newTestService(server)

	_, err := svc.VoiceCommand(context.Background(), "  ", "")
	assert.ErrorIs(t, err, ErrTranscriptRequired)

	_, err = svc.VoiceCommand(context.Background(), strings.Repeat("x", MaxTranscriptChars+1), "")
	assert.ErrorIs(t, err, ErrTranscriptTooLong)
}

func TestSmartReorderSkipsGatewayWhenNothingLow(t *testing.T) {
	server, body := fakeGateway(t, http.StatusOK, "{}")
	svc := newTestService(server)

	result, err := svc.SmartReorder(context.Background(), nil, "Sharma Traders")
	require.NoError(t, err)
	assert.Equal(t, "No low stock items to reorder.", result.Message)
	assert.Empty(t, *body, "gateway should not be called for an empty list")
}

func TestSmartReorderBuildsMessage(t *testing.T) {
	reply := `{"whatsappMessage":"Namaste Sharma Traders, please send 20 kg rice.","summary":"Order for rice"}`
	server, body := fakeGateway(t, http.StatusOK, reply)
	svc := newTestService(server)

	items := []LowStockItem{{Name: "Rice", Stock: 5, MinStock: 15, Unit: "kg", Category: "Grocery"}}
	result, err := svc.SmartReorder(context.Background(), items, "Sharma Traders")
	require.NoError(t, err)
	assert.Contains(t, result.WhatsAppMessage, "Sharma Traders")
	assert.Contains(t, *body, "Current stock 5 kg")
}

func TestSmartReorderRejectsOversizedList(t *testing.T) {
	server, _ := fakeGateway(t, http.StatusOK, "{}")
	svc := newTestService(server)

	items := make([]LowStockItem, MaxReorderItems+1)
	_, err := svc.SmartReorder(context.Background(), items, "")
	assert.ErrorIs(t, err, ErrTooManyItems)
}

func TestGatewayQuotaErrorsPassThrough(t *testing.T) {
	server, _ := fakeGateway(t, http.StatusTooManyRequests, "")
	svc := newTestService(server)

	_, err := svc.VoiceCommand(context.Background(), "stock check karo", "")
	assert.ErrorIs(t, err, httpx.ErrRateLimited)

	server402, _ := fakeGateway(t, http.StatusPaymentRequired, "")
	svc = newTestService(server402)
	_, err = svc.ScanBill(context.Background(), "aGVsbG8=")
	assert.ErrorIs(t, err, httpx.ErrPaymentRequired)
}
