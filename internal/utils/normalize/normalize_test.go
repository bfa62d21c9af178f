package normalize_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SeiwaLabs/invoice_kanri_app/internal/utils/normalize"
)

func TestParseAmount_StripsCurrencyGlyphs(t *testing.T) {
	cases := map[string]int64{
		"1,000":    1000,
		"¥2,500":   2500,
		"￥3000":    3000,
		"1200円":    1200,
		" 42 ":     42,
		"10,000円":  10000,
		"¥100,000": 100000,
	}
	for input, want := range cases {
		got := normalize.ParseAmount(input)
		require.NotNil(t, got, "input %q", input)
		assert.True(t, got.Equal(decimal.NewFromInt(want)), "input %q: got %s", input, got)
	}
}

func TestParseAmount_NumericTypes(t *testing.T) {
	got := normalize.ParseAmount(float64(1234))
	require.NotNil(t, got)
	assert.True(t, got.Equal(decimal.NewFromInt(1234)))

	got = normalize.ParseAmount(int(56))
	require.NotNil(t, got)
	assert.True(t, got.Equal(decimal.NewFromInt(56)))

	got = normalize.ParseAmount(int64(78))
	require.NotNil(t, got)
	assert.True(t, got.Equal(decimal.NewFromInt(78)))
}

func TestParseAmount_Unparsable(t *testing.T) {
	assert.Nil(t, normalize.ParseAmount(nil))
	assert.Nil(t, normalize.ParseAmount(""))
	assert.Nil(t, normalize.ParseAmount("不明"))
	assert.Nil(t, normalize.ParseAmount([]any{1}))
	assert.Nil(t, normalize.ParseAmount(true))
}

func TestParseAmount_Idempotent(t *testing.T) {
	// Re-parsing the string form of a parsed amount must return the same
	// value, so repeated normalization never drifts.
	first := normalize.ParseAmount("¥12,345円")
	require.NotNil(t, first)
	second := normalize.ParseAmount(first.String())
	require.NotNil(t, second)
	assert.True(t, first.Equal(*second))
}

func TestParseDate_StrictFormat(t *testing.T) {
	got := normalize.ParseDate("2025-04-01")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), *got)

	assert.Nil(t, normalize.ParseDate("2025/04/01"))
	assert.Nil(t, normalize.ParseDate("01-04-2025"))
	assert.Nil(t, normalize.ParseDate("2025-13-01"))
	assert.Nil(t, normalize.ParseDate(""))
	assert.Nil(t, normalize.ParseDate(nil))
	assert.Nil(t, normalize.ParseDate(20250401))
}

func TestString_TrimsAndRejectsEmpty(t *testing.T) {
	got := normalize.String("  株式会社テスト  ")
	require.NotNil(t, got)
	assert.Equal(t, "株式会社テスト", *got)

	assert.Nil(t, normalize.String("   "))
	assert.Nil(t, normalize.String(""))
	assert.Nil(t, normalize.String(123))
	assert.Nil(t, normalize.String(nil))
}

func TestNormalize_ParseFailureSentinel(t *testing.T) {
	ext := normalize.Normalize(map[string]any{
		"_parse_error": true,
		"_raw_text":    "the model replied with prose",
	})
	assert.True(t, ext.ParseFailed)
	assert.Equal(t, "the model replied with prose", ext.RawText)
	assert.Nil(t, ext.VendorName)
}

func TestNormalize_NilInput(t *testing.T) {
	ext := normalize.Normalize(nil)
	assert.True(t, ext.ParseFailed)
}

func TestNormalize_FullDocument(t *testing.T) {
	raw := map[string]any{
		"vendor_name":                 "株式会社サンプル",
		"invoice_number":              "INV-2025-001",
		"invoice_registration_number": "T1234567890123",
		"recipient_name":              "株式会社セイワ",
		"invoice_date":                "2025-03-15",
		"due_date":                    "2025-04-30",
		"total_amount":                "¥110,000",
		"subtotal_amount":             float64(100000),
		"tax_amount":                  "10,000円",
		"tax_10_amount":               "10000",
		"bank_account": map[string]any{
			"bank_name":      "みずほ銀行",
			"branch_name":    "東京支店",
			"account_type":   "普通",
			"account_number": "1234567",
			"account_holder": "カ）サンプル",
		},
		"items": []any{
			map[string]any{
				"description": "コンサルティング料",
				"amount":      "100,000",
				"tax":         "10,000",
				"tax_rate":    "10%",
			},
			"not an object",
			map[string]any{"description": "調整額", "amount": "0"},
		},
	}

	ext := normalize.Normalize(raw)
	assert.False(t, ext.ParseFailed)

	require.NotNil(t, ext.VendorName)
	assert.Equal(t, "株式会社サンプル", *ext.VendorName)
	require.NotNil(t, ext.RegistrationNumber)
	assert.Equal(t, "T1234567890123", *ext.RegistrationNumber)
	require.NotNil(t, ext.InvoiceDate)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), *ext.InvoiceDate)
	require.NotNil(t, ext.TotalAmount)
	assert.True(t, ext.TotalAmount.Equal(decimal.NewFromInt(110000)))
	require.NotNil(t, ext.Tax10Amount)
	assert.True(t, ext.Tax10Amount.Equal(decimal.NewFromInt(10000)))

	require.NotNil(t, ext.BankAccount)
	require.NotNil(t, ext.BankAccount.BankName)
	assert.Equal(t, "みずほ銀行", *ext.BankAccount.BankName)

	// the malformed middle item is dropped, its siblings survive
	require.Len(t, ext.Items, 2)
	require.NotNil(t, ext.Items[0].TaxRate)
	assert.Equal(t, "10%", *ext.Items[0].TaxRate)
	require.NotNil(t, ext.Items[1].Description)
	assert.Equal(t, "調整額", *ext.Items[1].Description)
}

func TestNormalize_EmptyBankAccountOmitted(t *testing.T) {
	ext := normalize.Normalize(map[string]any{
		"vendor_name": "vendor",
		"bank_account": map[string]any{
			"bank_name": "",
		},
	})
	assert.Nil(t, ext.BankAccount)
}

func TestNormalize_MissingFieldsStayNil(t *testing.T) {
	ext := normalize.Normalize(map[string]any{"vendor_name": "vendor"})
	assert.False(t, ext.ParseFailed)
	assert.Nil(t, ext.InvoiceDate)
	assert.Nil(t, ext.TotalAmount)
	assert.Nil(t, ext.RegistrationNumber)
	assert.Empty(t, ext.Items)
}
