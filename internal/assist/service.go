package assist

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const (
	scanModel  = "google/gemini-2.5-pro"
	chatModel  = "google/gemini-3-flash-preview"
	defaultDistributor = "Supplier Ji"
)

const scanBillSystemPrompt = `You are a stock entry assistant for an Indian retail shop. Extract product information from handwritten bills, notes, or receipts.

Your task is to parse the image and extract stock entries in this exact JSON format:
{
  "entries": [
    {
      "name": "Product name in English",
      "quantity": 10,
      "unit": "kg" or "piece" or "litre" or "pack",
      "price": 45.00,
      "category": "Grocery" or "Medicine" or "FMCG" or "Personal Care" or "Household"
    }
  ],
  "notes": "Any additional notes or unclear items"
}

Handle Hindi, Marathi, and Gujarati text. Translate product names to English.
If handwriting is unclear, make your best guess and note it.
Common Indian products: dal, rice (chawal), atta, sugar (cheeni), oil (tel), salt (namak), spices (masala).`

const voiceSystemPrompt = `You are a voice command parser for an Indian retail shop POS system.
Parse voice commands in Hindi, Marathi, Gujarati, or English and extract the action.

Supported actions:
1. ADD_STOCK: Add products to inventory
2. CREATE_BILL: Add items to current bill/cart
3. CHECK_STOCK: Query stock levels
4. CHECK_PRICE: Query product prices

Output format (JSON only):
{
  "action": "ADD_STOCK" | "CREATE_BILL" | "CHECK_STOCK" | "CHECK_PRICE",
  "items": [
    {
      "name": "Product name in English",
      "quantity": 10,
      "unit": "kg" | "piece" | "litre" | "pack",
      "price": 45.00 (optional, only if mentioned)
    }
  ],
  "confidence": 0.95,
  "originalText": "The original command",
  "interpretation": "Brief English explanation of what was understood"
}

Common Hindi/Marathi/Gujarati terms:
- "jodo/dalo/add karo" = add
- "stock mein" = to inventory
- "bill mein" = to bill
- "kitna hai/stock check" = check quantity
- "rate/kimat/bhav" = price
- "kilo/kg" = kilogram
- "packet/pack" = packet
- "piece/dana" = piece
- "rupees/rupaye" = currency`

const reorderSystemPrompt = `You are a helpful assistant for Indian retail shopkeepers. Generate professional WhatsApp order messages for distributors.

The message should be:
- Polite and professional in Hinglish (mix of Hindi and English, written in Roman script)
- Include all items with suggested order quantities (roughly double the shortage)
- Ask for delivery by tomorrow or day after
- Include a greeting and closing
- Keep it concise but complete

Format the output as JSON:
{
  "whatsappMessage": "The complete WhatsApp message ready to send",
  "summary": "Brief summary of the order in English"
}`

// Service proxies store assistant features through the AI gateway.
type Service struct {
	logger *slog.Logger
	client *Client
}

func NewService(logger *slog.Logger, client *Client) *Service {
	return &Service{logger: logger, client: client}
}

// ScanBill extracts stock entries from a base64-encoded bill photo. A reply
// the model refuses to structure degrades to empty entries with the raw text
// carried in Notes.
func (s *Service) ScanBill(ctx context.Context, imageBase64 string) (ScanBillResult, error) {
	if imageBase64 == "" {
		return ScanBillResult{}, ErrImageRequired
	}
	if len(imageBase64) > MaxImageBytes {
		return ScanBillResult{}, ErrImageTooLarge
	}

	content, err := s.client.Complete(ctx, chatRequest{
		Model: scanModel,
		Messages: []chatMessage{
			{Role: "system", Content: scanBillSystemPrompt},
			{Role: "user", Content: []any{
				textPart{Type: "text", Text: "Extract all product entries from this handwritten bill/note. Return valid JSON only."},
				newImagePart("data:image/jpeg;base64," + imageBase64),
			}},
		},
		MaxTokens: 2000,
	})
	if err != nil {
		return ScanBillResult{}, err
	}

	var result ScanBillResult
	if err := extractJSON(content, &result); err != nil {
		s.logger.Warn("bill scan reply was not valid json", "error", err)
		return ScanBillResult{
			Entries: []StockEntry{},
			Notes:   content,
			Error:   "Could not parse structured data. Raw response included.",
		}, nil
	}
	if result.Entries == nil {
		result.Entries = []StockEntry{}
	}
	return result, nil
}

// VoiceCommand interprets a spoken store command transcript. Unparseable
// replies degrade to an UNKNOWN action rather than an error.
func (s *Service) VoiceCommand(ctx context.Context, transcript, language string) (VoiceCommandResult, error) {
	if strings.TrimSpace(transcript) == "" {
		return VoiceCommandResult{}, ErrTranscriptRequired
	}
	if len(transcript) > MaxTranscriptChars {
		return VoiceCommandResult{}, ErrTranscriptTooLong
	}
	if language == "" {
		language = "auto-detect"
	}

	content, err := s.client.Complete(ctx, chatRequest{
		Model: chatModel,
		Messages: []chatMessage{
			{Role: "system", Content: voiceSystemPrompt},
			{Role: "user", Content: fmt.Sprintf(
				"Parse this voice command (language: %s): %q\n\nReturn valid JSON only.",
				language, transcript)},
		},
		MaxTokens: 500,
	})
	if err != nil {
		return VoiceCommandResult{}, err
	}

	var result VoiceCommandResult
	if err := extractJSON(content, &result); err != nil {
		s.logger.Warn("voice command reply was not valid json", "error", err)
		return VoiceCommandResult{
			Action:         ActionUnknown,
			Items:          []CommandItem{},
			OriginalText:   transcript,
			Interpretation: "Could not parse the command. Please try again.",
			Error:          "Failed to parse voice command",
		}, nil
	}
	if result.Items == nil {
		result.Items = []CommandItem{}
	}
	return result, nil
}

// SmartReorder drafts a distributor order message for the low stock items.
// An empty item list short-circuits without calling the gateway.
func (s *Service) SmartReorder(ctx context.Context, items []LowStockItem, distributorName string) (ReorderResult, error) {
	if len(items) == 0 {
		return ReorderResult{Message: "No low stock items to reorder."}, nil
	}
	if len(items) > MaxReorderItems {
		return ReorderResult{}, ErrTooManyItems
	}
	if distributorName == "" {
		distributorName = defaultDistributor
	}

	var list strings.Builder
	for _, item := range items {
		fmt.Fprintf(&list, "- %s: Current stock %d %s, need minimum %d %s\n",
			item.Name, item.Stock, item.Unit, item.MinStock, item.Unit)
	}

	content, err := s.client.Complete(ctx, chatRequest{
		Model: chatModel,
		Messages: []chatMessage{
			{Role: "system", Content: reorderSystemPrompt},
			{Role: "user", Content: fmt.Sprintf(
				"Generate a WhatsApp order message for distributor %q.\n\nLow stock items that need reordering:\n%s\nCreate a professional order message in Hinglish.",
				distributorName, list.String())},
		},
		MaxTokens: 1000,
	})
	if err != nil {
		return ReorderResult{}, err
	}

	var result ReorderResult
	if err := extractJSON(content, &result); err != nil {
		s.logger.Warn("reorder reply was not valid json", "error", err)
		return ReorderResult{WhatsAppMessage: content, Summary: "Order message generated"}, nil
	}
	return result, nil
}
