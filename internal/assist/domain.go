package assist

import "errors"

var (
	ErrImageRequired      = errors.New("image data is required")
	ErrImageTooLarge      = errors.New("image exceeds size limit")
	ErrTranscriptRequired = errors.New("voice transcript is required")
	ErrTranscriptTooLong  = errors.New("transcript exceeds length limit")
	ErrTooManyItems       = errors.New("too many low stock items")
)

// Request limits enforced before any gateway call is made.
const (
	MaxImageBytes      = 10 << 20
	MaxTranscriptChars = 5000
	MaxReorderItems    = 100
)

// StockEntry is one line item extracted from a handwritten supplier bill.
type StockEntry struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Unit     string  `json:"unit"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

// ScanBillResult is the outcome of extracting stock entries from a bill
// image. When the model reply cannot be parsed the entries are empty and
// the raw reply is preserved in Notes so nothing is silently lost.
type ScanBillResult struct {
	Entries []StockEntry `json:"entries"`
	Notes   string       `json:"notes,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// CommandAction classifies a spoken store command.
type CommandAction string

const (
	ActionAddStock   CommandAction = "ADD_STOCK"
	ActionCreateBill CommandAction = "CREATE_BILL"
	ActionCheckStock CommandAction = "CHECK_STOCK"
	ActionCheckPrice CommandAction = "CHECK_PRICE"
	ActionUnknown    CommandAction = "UNKNOWN"
	ActionError      CommandAction = "ERROR"
)

// CommandItem is one product reference extracted from a transcript.
type CommandItem struct {
	Name     string   `json:"name"`
	Quantity int      `json:"quantity"`
	Unit     string   `json:"unit"`
	Price    *float64 `json:"price,omitempty"`
}

// VoiceCommandResult is the structured interpretation of a transcript.
type VoiceCommandResult struct {
	Action         CommandAction `json:"action"`
	Items          []CommandItem `json:"items"`
	Confidence     float64       `json:"confidence"`
	OriginalText   string        `json:"originalText"`
	Interpretation string        `json:"interpretation"`
	Error          string        `json:"error,omitempty"`
}

// LowStockItem summarizes one product's stock position for the reorder prompt.
type LowStockItem struct {
	Name     string `json:"name"`
	Stock    int    `json:"stock"`
	MinStock int    `json:"min_stock"`
	Category string `json:"category"`
	Unit     string `json:"unit"`
}

// ReorderResult carries a distributor order message drafted by the model.
type ReorderResult struct {
	WhatsAppMessage string `json:"whatsappMessage"`
	Summary         string `json:"summary,omitempty"`
	Message         string `json:"message,omitempty"`
}
