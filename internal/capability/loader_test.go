package capability

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"fiscal-coupon/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeProfile writes set as JSON, gzipped when filename ends in .gz.
func writeProfile(t *testing.T, filename string, set Set) string {
	t.Helper()

	data, err := json.Marshal(set)
	require.NoError(t, err)
	return writeRawProfile(t, filename, data)
}

func writeRawProfile(t *testing.T, filename string, data []byte) string {
	t.Helper()

	filePath := filepath.Join(t.TempDir(), filename)

	file, err := os.Create(filePath)
	require.NoError(t, err)
	defer file.Close()

	if filepath.Ext(filename) == ".gz" {
		gzipWriter := gzip.NewWriter(file)
		defer gzipWriter.Close()
		_, err = gzipWriter.Write(data)
	} else {
		_, err = file.Write(data)
	}
	require.NoError(t, err)

	return filePath
}

func TestFileLoader_Load_JSON(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())
	profile := DefaultProfile()
	profile.Model = "bematech-mp25"

	filePath := writeProfile(t, "mp25.json", profile)

	set, err := loader.Load(context.Background(), filePath)

	require.NoError(t, err)
	assert.Equal(t, profile, set)
}

func TestFileLoader_Load_Gzip(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())
	profile := DefaultProfile()
	profile.Model = "daruma-fs345"

	filePath := writeProfile(t, "fs345.json.gz", profile)

	set, err := loader.Load(context.Background(), filePath)

	require.NoError(t, err)
	assert.Equal(t, "daruma-fs345", set.Model)
	assert.Equal(t, profile.Arguments, set.Arguments)
}

func TestFileLoader_Load_EnumNames(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	filePath := writeRawProfile(t, "small.json", []byte(`{
		"model": "small",
		"charset": "iso-8859-1",
		"units": ["empty", "liters"],
		"paymentMethods": ["money"],
		"arguments": {
			"item_quantity": {"digits": 4, "decimals": 3},
			"add_cash_value": {"minSize": "0.50", "maxSize": 1000}
		}
	}`))

	set, err := loader.Load(context.Background(), filePath)

	require.NoError(t, err)
	assert.Equal(t, []model.Unit{model.UnitEmpty, model.UnitLiters}, set.Units)
	assert.Equal(t, []model.PaymentMethod{model.PaymentMoney}, set.PaymentMethods)
	assert.False(t, set.AllowsPaymentMethod(model.PaymentCheque))

	cash, ok := set.Lookup(AddCashValue)
	require.True(t, ok)
	assert.Equal(t, "0.5", cash.MinSize.String())
	assert.Equal(t, "1000", cash.MaxSize.String())
}

func TestFileLoader_Load_Errors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		errorMsg string
	}{
		{
			name:     "Malformed JSON",
			filename: "broken.json",
			content:  `{"model": `,
			errorMsg: "failed to decode capability profile",
		},
		{
			name:     "Unknown field",
			filename: "extra.json",
			content:  `{"model": "x", "charset": "cp850", "units": ["empty"], "paymentMethods": ["money"], "colour": "red"}`,
			errorMsg: "failed to decode capability profile",
		},
		{
			name:     "Unknown unit name",
			filename: "unit.json",
			content:  `{"model": "x", "charset": "cp850", "units": ["furlongs"], "paymentMethods": ["money"]}`,
			errorMsg: "failed to decode capability profile",
		},
		{
			name:     "Fails validation",
			filename: "nomodel.json",
			content:  `{"model": "", "charset": "cp850", "units": ["empty"], "paymentMethods": ["money"]}`,
			errorMsg: "invalid capability profile",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := NewFileLoader(zerolog.Nop())
			filePath := writeRawProfile(t, tt.filename, []byte(tt.content))

			set, err := loader.Load(context.Background(), filePath)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
			assert.Empty(t, set.Model)
		})
	}
}

func TestFileLoader_Load_FileNotFound(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	_, err := loader.Load(context.Background(), "/nonexistent/path/to/profile.json")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open capability profile")
}

func TestFileLoader_Load_InvalidGzip(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	filePath := filepath.Join(t.TempDir(), "invalid.json.gz")
	require.NoError(t, os.WriteFile(filePath, []byte("not a gzip file"), 0644))

	_, err := loader.Load(context.Background(), filePath)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create gzip reader")
}

func TestFileLoader_Load_ContextCancelled(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())
	filePath := writeProfile(t, "profile.json", DefaultProfile())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := loader.Load(ctx, filePath)

	assert.ErrorIs(t, err, context.Canceled)
}
