package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Circulation-api/internal/domain/entity"
)

func TestReadCSV_Latin1(t *testing.T) {
	// "Peña" en ISO-8859-1
	raw := []byte("emp_id;nombre;rol;password\nE001;Pe\xf1a;operator;x\n")
	rows, err := readCSV(bytes.NewReader(raw), true)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Peña", rows[1][1])
}

func TestReadRows_XLSX(t *testing.T) {
	x := excelize.NewFile()
	sheet := x.GetSheetName(0)
	require.NoError(t, x.SetSheetRow(sheet, "A1", &[]any{"item_id", "uom", "qty", "unit_price", "currency_id"}))
	require.NoError(t, x.SetSheetRow(sheet, "A2", &[]any{"tornillo", "und", "12,5", "3", "1"}))
	path := filepath.Join(t.TempDir(), "stocks.xlsx")
	require.NoError(t, x.SaveAs(path))

	rows, err := readRows(path, false)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	stocks, err := parseStocks(rows, time.Now())
	require.NoError(t, err)
	require.Len(t, stocks, 1)
	assert.True(t, stocks[0].Qty.Equal(decimal.RequireFromString("12.5")))

	fillAmountMain(stocks[0], decimal.NewFromInt(1))
	assert.True(t, stocks[0].AmountMain.Equal(decimal.RequireFromString("37.5")))
}

func TestParseUsers(t *testing.T) {
	users, err := parseUsers([][]string{{"E100", "Eva", "Evaluator", "clave"}}, time.Now())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, entity.RoleEvaluator, users[0].Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users[0].PasswordHash), []byte("clave")))

	_, err = parseUsers([][]string{{"E1", "X", "root", "p"}}, time.Now())
	assert.Error(t, err)
}

func TestParseStocks_Invalidos(t *testing.T) {
	_, err := parseStocks([][]string{{"a", "und", "-1", "1", "1"}}, time.Now())
	assert.Error(t, err)
	_, err = parseStocks([][]string{{"a", "und", "1", "1"}}, time.Now())
	assert.Error(t, err)
}

func TestReadRows_ArchivoInexistente(t *testing.T) {
	_, err := readRows(filepath.Join(os.TempDir(), "no-existe.csv"), false)
	assert.Error(t, err)
}
