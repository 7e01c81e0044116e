package dataset

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"hash"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// The six raw tables every data directory must provide, each as either
// <name>.csv or <name>.xlsx.
var requiredTables = []string{
	"website_sessions",
	"website_pageviews",
	"orders",
	"order_items",
	"products",
	"order_item_refunds",
}

// Load reads the raw tables from dir, normalizes and enriches them and
// returns the resulting Dataset. A missing table is a fatal error; dirty
// values inside a present table never are.
func Load(logger *slog.Logger, dir string) (*Dataset, error) {
	tables := make(map[string]*table, len(requiredTables))
	digest := sha256.New()

	for _, name := range requiredTables {
		t, err := loadTable(dir, name, digest)
		if err != nil {
			return nil, fmt.Errorf("loading table %s: %w", name, err)
		}
		tables[name] = t
		logger.Debug("loaded raw table", "table", name, "rows", len(t.rows))
	}

	ds := normalize(logger, tables)
	enrich(ds, tables["order_item_refunds"])
	ds.Version = hex.EncodeToString(digest.Sum(nil))

	logger.Info("dataset ready",
		"version", ds.Version[:12],
		"sessions", len(ds.Sessions),
		"pageviews", len(ds.Pageviews),
		"orders", len(ds.Orders),
		"order_items", len(ds.OrderItems),
		"products", len(ds.Products))
	return ds, nil
}

// loadTable tries <name>.csv, then <name>.xlsx. Raw file bytes feed the
// digest so the dataset Version changes whenever any input file does.
func loadTable(dir, name string, digest hash.Hash) (*table, error) {
	csvPath := filepath.Join(dir, name+".csv")
	if _, err := os.Stat(csvPath); err == nil {
		return loadCSV(csvPath, name, digest)
	}

	xlsxPath := filepath.Join(dir, name+".xlsx")
	if _, err := os.Stat(xlsxPath); err == nil {
		return loadXLSX(xlsxPath, name, digest)
	}

	return nil, fmt.Errorf("neither %s.csv nor %s.xlsx found in %s", name, name, dir)
}

func loadCSV(path, name string, digest hash.Hash) (*table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	digest.Write([]byte(name))
	digest.Write(raw)

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s has no header row", path)
	}
	return newTable(name, records[0], records[1:]), nil
}

func loadXLSX(path, name string, digest hash.Hash) (*table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	digest.Write([]byte(name))
	digest.Write(raw)

	book, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s has no sheets", path)
	}
	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s of %s: %w", sheets[0], path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s has no header row", path)
	}
	return newTable(name, rows[0], rows[1:]), nil
}
