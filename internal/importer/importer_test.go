package importer

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCatalog(t *testing.T) {
	csv := `Name,Description,Category,Price,Unit,Stock,Image URL
Huevos de campo,Docena de huevos,huevos,2500,docena,30,https://example.com/huevos.jpg
Almendras,,frutos-secos,4600.50,250g,12,
Avena arrollada,,,900,,,
`

	rows, rowErrors, err := ParseCatalog(strings.NewReader(csv))

	require.NoError(t, err)
	assert.Empty(t, rowErrors)
	require.Len(t, rows, 3)

	assert.Equal(t, "Huevos de campo", rows[0].Name)
	assert.Equal(t, "Docena de huevos", rows[0].Description)
	assert.Equal(t, "huevos", rows[0].Category)
	assert.True(t, rows[0].Price.Equal(decimal.NewFromInt(2500)))
	assert.Equal(t, "docena", rows[0].Unit)
	assert.Equal(t, 30, rows[0].Stock)
	assert.Equal(t, "https://example.com/huevos.jpg", rows[0].ImageURL)

	assert.True(t, rows[1].Price.Equal(decimal.NewFromFloat(4600.50)))
	assert.Equal(t, 12, rows[1].Stock)

	// Omitted trailing columns default to empty.
	assert.Equal(t, "", rows[2].Category)
	assert.Equal(t, 0, rows[2].Stock)
}

func TestParseCatalog_HeaderOrderIndependent(t *testing.T) {
	csv := `Price,Name,Stock
1200,Garbanzos,8
`

	rows, rowErrors, err := ParseCatalog(strings.NewReader(csv))

	require.NoError(t, err)
	assert.Empty(t, rowErrors)
	require.Len(t, rows, 1)
	assert.Equal(t, "Garbanzos", rows[0].Name)
	assert.True(t, rows[0].Price.Equal(decimal.NewFromInt(1200)))
	assert.Equal(t, 8, rows[0].Stock)
}

func TestParseCatalog_RowErrorsAreCollected(t *testing.T) {
	csv := `Name,Price,Stock
,1000,5
Lentejas,,5
Porotos,abc,5
Quinoa,1500,-2
Mijo,800,3
`

	rows, rowErrors, err := ParseCatalog(strings.NewReader(csv))

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Mijo", rows[0].Name)

	require.Len(t, rowErrors, 4)
	assert.Contains(t, rowErrors[0], "line 2")
	assert.Contains(t, rowErrors[1], "line 3")
	assert.Contains(t, rowErrors[2], "line 4")
	assert.Contains(t, rowErrors[3], "line 5")
}

func TestParseCatalog_MissingRequiredColumns(t *testing.T) {
	_, _, err := ParseCatalog(strings.NewReader("Description,Stock\nx,1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Name")

	_, _, err = ParseCatalog(strings.NewReader("Name,Stock\nx,1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Price")
}

func TestParseCatalog_EmptyFile(t *testing.T) {
	_, _, err := ParseCatalog(strings.NewReader(""))
	require.Error(t, err)
}
