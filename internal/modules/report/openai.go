package report

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	openai "github.com/sashabaranov/go-openai"
)

// openaiExtractor reads handwritten tally sheets with an OpenAI vision model.
type openaiExtractor struct {
	client   *openai.Client
	model    string
	validate *validator.Validate
}

// NewOpenAIExtractor creates the OpenAI-backed extractor adapter.
func NewOpenAIExtractor(apiKey, model string) Extractor {
	return &openaiExtractor{
		client:   openai.NewClient(apiKey),
		model:    model,
		validate: validator.New(),
	}
}

// weeklyWire and purchaseWire mirror the JSON the model is instructed to
// return. Numeric cells come back as numbers or strings ("1,5"), so they are
// decoded raw and normalized afterwards.
type weeklyWire struct {
	Producto string          `json:"producto" validate:"required"`
	Local    json.RawMessage `json:"local"`
	Bodega   json.RawMessage `json:"bodega"`
	Total    json.RawMessage `json:"total"`
}

type purchaseWire struct {
	Producto string          `json:"producto" validate:"required"`
	Compra   json.RawMessage `json:"compra"`
}

func (e *openaiExtractor) Extract(ctx context.Context, req Request) (Rows, error) {
	mt := strings.ToLower(strings.TrimSpace(req.MIMEType))
	if !strings.HasPrefix(mt, "image/") {
		return Rows{}, fmt.Errorf("%w: %s", ErrUnsupportedMedia, mt)
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", mt, base64.StdEncoding.EncodeToString(req.Image))

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt(req.Mode, req.RestrictToNames),
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: "Extrae las filas de la tabla en JSON.",
					},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
	})
	if err != nil {
		return Rows{}, fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Rows{Mode: req.Mode}, nil
	}

	return e.decodeRows(req.Mode, resp.Choices[0].Message.Content)
}

func (e *openaiExtractor) decodeRows(mode Mode, text string) (Rows, error) {
	raw := salvageJSON(text)
	if raw == nil {
		return Rows{Mode: mode}, nil
	}

	rows := Rows{Mode: mode}
	switch mode {
	case ModePurchase:
		var payload struct {
			Items []purchaseWire `json:"items"`
		}
		if err := json.Unmarshal(raw, &payload); err != nil {
			return rows, nil
		}
		for _, w := range payload.Items {
			if e.validate.Struct(w) != nil {
				continue
			}
			rows.Purchase = append(rows.Purchase, PurchaseRow{
				Name: CleanName(w.Producto),
				Qty:  parseCell(w.Compra),
			})
		}
	default:
		var payload struct {
			Items []weeklyWire `json:"items"`
		}
		if err := json.Unmarshal(raw, &payload); err != nil {
			return rows, nil
		}
		for _, w := range payload.Items {
			if e.validate.Struct(w) != nil {
				continue
			}
			rows.Weekly = append(rows.Weekly, WeeklyRow{
				Name:    CleanName(w.Producto),
				Front:   parseCell(w.Local),
				Storage: parseCell(w.Bodega),
				Total:   parseCell(w.Total),
			})
		}
	}
	return rows, nil
}

// salvageJSON extracts the first {...} or [...] block when the model wraps
// its JSON in prose.
func salvageJSON(s string) json.RawMessage {
	if json.Valid([]byte(s)) {
		return json.RawMessage(s)
	}
	if i, j := strings.Index(s, "{"), strings.LastIndex(s, "}"); i != -1 && j > i {
		if frag := s[i : j+1]; json.Valid([]byte(frag)) {
			return json.RawMessage(frag)
		}
	}
	if i, j := strings.Index(s, "["), strings.LastIndex(s, "]"); i != -1 && j > i {
		if frag := s[i : j+1]; json.Valid([]byte(frag)) {
			return json.RawMessage(frag)
		}
	}
	return nil
}

// parseCell turns a raw JSON cell into a number. Absent, null or unreadable
// cells become nil, never zero.
func parseCell(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	n, ok := parseQty(s)
	if !ok {
		return nil
	}
	return &n
}

func systemPrompt(mode Mode, restrictTo []string) string {
	var b strings.Builder
	b.WriteString("Eres un extractor estricto de inventario para un restaurante.\n")
	b.WriteString("Vas a leer una FOTO de una tabla hecha a mano.\n\n")
	b.WriteString("REGLAS:\n")
	b.WriteString("- Devuelve SOLO JSON válido, sin texto extra.\n")
	switch mode {
	case ModePurchase:
		b.WriteString(`- Formato EXACTO: {"items":[{"producto":"<string>","compra":<number>}, ...]}` + "\n")
		b.WriteString("- \"compra\" es la columna de cantidad comprada.\n")
	default:
		b.WriteString(`- Formato EXACTO: {"items":[{"producto":"<string>","local":<number>,"bodega":<number>,"total":<number>}, ...]}` + "\n")
		b.WriteString("- \"local\", \"bodega\" y \"total\" son las columnas de la tabla; omite la clave si la celda está vacía o ilegible.\n")
	}
	b.WriteString("- \"producto\" debe ser el texto tal cual, sin inventar nada.\n")
	b.WriteString("- Los números pueden ser decimales. Nunca pongas 0 si la celda está vacía.\n")
	b.WriteString("- Ignora encabezados como \"Producto\", \"Local\", \"Bodega\", \"Total\", \"Compra\".\n")
	b.WriteString("- No incluyas filas vacías ni categorías.\n")
	b.WriteString("- Si no puedes leer nada, devuelve {\"items\":[]}.\n")
	if len(restrictTo) > 0 {
		b.WriteString("- SOLO extrae las filas cuyo producto sea uno de estos, lee sus celdas con máximo cuidado:\n")
		for _, name := range restrictTo {
			b.WriteString("  - " + name + "\n")
		}
	}
	return b.String()
}
