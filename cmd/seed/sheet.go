package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Circulation-api/internal/domain/entity"
	"github.com/jhoicas/Circulation-api/internal/domain/inventory"
)

// readRows lee las filas de datos (sin cabecera) de un .xlsx o .csv.
func readRows(path string, latin1 bool) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows [][]string
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		rows, err = readXLSX(f)
	} else {
		rows, err = readCSV(f, latin1)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		rows = rows[1:]
	}
	return rows, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	x, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("abrir xlsx: %w", err)
	}
	defer x.Close()
	sheets := x.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx sin hojas")
	}
	return x.GetRows(sheets[0])
}

func readCSV(r io.Reader, latin1 bool) ([][]string, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr.ReadAll()
}

func parseUsers(rows [][]string, now time.Time) ([]*entity.User, error) {
	out := make([]*entity.User, 0, len(rows))
	for i, r := range rows {
		if len(r) < 4 {
			return nil, fmt.Errorf("fila %d: se esperan 4 columnas", i+2)
		}
		role := strings.ToLower(strings.TrimSpace(r[2]))
		switch role {
		case entity.RoleAdmin, entity.RoleEvaluator, entity.RoleOperator:
		default:
			return nil, fmt.Errorf("fila %d: rol %q inválido", i+2, role)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(r[3]), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("fila %d: %w", i+2, err)
		}
		out = append(out, &entity.User{
			ID:           uuid.New().String(),
			EmpID:        strings.TrimSpace(r[0]),
			Name:         strings.TrimSpace(r[1]),
			PasswordHash: string(hash),
			Role:         role,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	return out, nil
}

func parseStocks(rows [][]string, now time.Time) ([]*entity.Stock, error) {
	out := make([]*entity.Stock, 0, len(rows))
	for i, r := range rows {
		if len(r) < 5 {
			return nil, fmt.Errorf("fila %d: se esperan 5 columnas", i+2)
		}
		qty, err := parseDecimal(r[2])
		if err != nil || qty.IsNegative() || !inventory.ValidScale(qty) {
			return nil, fmt.Errorf("fila %d: qty %q inválida", i+2, r[2])
		}
		price, err := parseDecimal(r[3])
		if err != nil || price.IsNegative() || !inventory.ValidScale(price) {
			return nil, fmt.Errorf("fila %d: unit_price %q inválido", i+2, r[3])
		}
		currencyID, err := strconv.ParseInt(strings.TrimSpace(r[4]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("fila %d: currency_id %q inválido", i+2, r[4])
		}
		out = append(out, &entity.Stock{
			ID:         uuid.New().String(),
			ItemID:     strings.TrimSpace(r[0]),
			UOM:        strings.TrimSpace(r[1]),
			Qty:        qty,
			UnitPrice:  price,
			CurrencyID: currencyID,
			UpdatedAt:  now,
		})
	}
	return out, nil
}

func fillAmountMain(s *entity.Stock, rate decimal.Decimal) {
	s.AmountMain = inventory.Round(inventory.AmountMain(s.Qty, s.UnitPrice, s.CurrencyID, rate))
}

// parseDecimal acepta coma decimal ("12,5").
func parseDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.Replace(strings.TrimSpace(s), ",", ".", 1))
}
