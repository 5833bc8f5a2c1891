// Package csvimport lee los conteos de existencias exportados por el punto de venta.
// Formato por renglón: sku, cantidad[, minimo]. Se admite encabezado si la primera columna es "sku".
package csvimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// StockRow conteo físico de un producto.
type StockRow struct {
	Line     int
	SKU      string
	Quantity int64
	MinStock *int64
}

// Options lectura del archivo. Latin1 para los exportes del POS en Windows (ISO-8859-1).
type Options struct {
	Delimiter rune
	Latin1    bool
}

// ReadStock lee todos los renglones; se detiene en el primer renglón inválido.
func ReadStock(r io.Reader, opts Options) ([]StockRow, error) {
	if opts.Latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.Comma = ','
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows []StockRow
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv línea %d: %w", line, err)
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "sku") {
			continue
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		row, err := parseRow(line, rec)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(line int, rec []string) (StockRow, error) {
	if len(rec) < 2 {
		return StockRow{}, fmt.Errorf("csv línea %d: se esperan al menos sku y cantidad", line)
	}
	row := StockRow{Line: line, SKU: strings.TrimSpace(rec[0])}
	if row.SKU == "" {
		return StockRow{}, fmt.Errorf("csv línea %d: sku vacío", line)
	}
	qty, err := parseQty(rec[1])
	if err != nil {
		return StockRow{}, fmt.Errorf("csv línea %d: cantidad %q: %w", line, rec[1], err)
	}
	row.Quantity = qty
	if len(rec) > 2 && strings.TrimSpace(rec[2]) != "" {
		minStock, err := parseQty(rec[2])
		if err != nil {
			return StockRow{}, fmt.Errorf("csv línea %d: mínimo %q: %w", line, rec[2], err)
		}
		row.MinStock = &minStock
	}
	return row, nil
}

func parseQty(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negativo")
	}
	return n, nil
}
