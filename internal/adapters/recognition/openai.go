// Package recognition extracts structured invoice data from document images
// using the OpenAI vision API.
package recognition

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	portssvc "github.com/SeiwaLabs/invoice_kanri_app/internal/core/ports/services"
)

// extractionPrompt instructs the model to return the invoice fields as bare
// JSON. The field names are the contract with the normalizer.
const extractionPrompt = `あなたは日本の請求書を解析する専門家です。
添付された請求書画像/PDFから以下の情報をJSON形式で抽出してください。

必須フィールド:
- vendor_name: 請求元会社名
- invoice_number: 請求書番号
- invoice_date: 請求日 (YYYY-MM-DD)
- due_date: 支払期日 (YYYY-MM-DD)
- total_amount: 請求金額（税込合計、数値のみ）
- subtotal_amount: 税抜金額（数値のみ）
- tax_amount: 消費税額合計（数値のみ）
- tax_8_amount: 8%対象の消費税額（数値のみ、該当なしはnull）
- tax_10_amount: 10%対象の消費税額（数値のみ、該当なしはnull）
- invoice_registration_number: 適格請求書発行事業者の登録番号（T+13桁、見つからなければnull）
- recipient_name: 請求先（書類の交付を受ける事業者名）
- description: 取引内容の要約
- bank_account:
    - bank_name: 銀行名
    - branch_name: 支店名
    - account_type: 口座種別（普通/当座）
    - account_number: 口座番号
    - account_holder: 口座名義
- items: 品目リスト
    - description: 品目名/摘要
    - amount: 金額
    - tax: 消費税額
    - tax_rate: 税率（"8%" or "10%"）

値が読み取れない場合はnullとしてください。
JSON形式のみ出力してください（マークダウン不要）。`

// VisionRecognizer calls the OpenAI chat completion API with the document
// attached as an image.
type VisionRecognizer struct {
	client *openai.Client
	model  string
}

// NewVisionRecognizer creates a recognizer backed by the given API key.
// model falls back to gpt-4o when empty.
func NewVisionRecognizer(apiKey, model string) *VisionRecognizer {
	if model == "" {
		model = openai.GPT4o
	}
	return &VisionRecognizer{client: openai.NewClient(apiKey), model: model}
}

var _ portssvc.Recognizer = (*VisionRecognizer)(nil)

// Extract sends the document to the model and decodes the returned JSON.
// Output that is not JSON is returned as a parse-error map rather than an
// error: the model answered, it just answered unusably, and that outcome has
// to be recorded on the invoice.
func (r *VisionRecognizer) Extract(ctx context.Context, fileBytes []byte, mimeType string) (map[string]any, error) {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(fileBytes))

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       r.model,
		Temperature: 0.1,
		MaxTokens:   4000,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: extractionPrompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	content := trimToJSON(resp.Choices[0].Message.Content)

	var result map[string]any
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return map[string]any{"_raw_text": content, "_parse_error": true}, nil
	}
	return result, nil
}

// trimToJSON strips a markdown code fence and any prose around the outermost
// JSON object.
func trimToJSON(content string) string {
	content = strings.TrimSpace(content)
	if idx := strings.Index(content, "```"); idx != -1 {
		rest := content[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end != -1 {
			content = strings.TrimSpace(rest[:end])
		}
	}
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start != -1 && end > start {
		content = content[start : end+1]
	}
	return content
}
