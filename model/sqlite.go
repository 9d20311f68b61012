package model

import (
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"
)

const sqliteTablesQuery = `SELECT name FROM sqlite_master
WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%'
ORDER BY name`

// LoadSQLite reads every table and view of a SQLite database, one dataset
// per table. The database is opened read-only.
func LoadSQLite(path string, opt LoadOption) ([]*Dataset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = db.Close() }()

	tables, err := sqliteTables(db)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables of %s: %w", path, err)
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("%w: %s has no tables", ErrEmptyDataset, path)
	}

	datasets := make([]*Dataset, 0, len(tables))
	for _, table := range tables {
		d, err := readTable(db, table, opt.KeyField)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		d.Source = Source{URI: path, Format: FormatSQLite, Size: info.Size()}
		datasets = append(datasets, d)
	}
	return datasets, nil
}

func sqliteTables(db *sql.DB) ([]string, error) {
	rows, err := db.Query(sqliteTablesQuery)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func readTable(db *sql.DB, table, keyField string) (*Dataset, error) {
	rows, err := db.Query("SELECT * FROM " + quoteIdent(table))
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", table, err)
	}

	var values [][]any
	for rows.Next() {
		row := make([]any, len(names))
		dest := make([]any, len(names))
		for i := range row {
			dest[i] = &row[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("table %s: %w", table, err)
		}
		for i, v := range row {
			if b, ok := v.([]byte); ok {
				row[i] = blobValue(b)
			}
		}
		values = append(values, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("table %s: %w", table, err)
	}

	return buildDataset(table, names, values, false, keyField)
}

// blobValue keeps UTF-8 blobs as text and shows the rest as hex
func blobValue(b []byte) string {
	if IsValidUTF8(string(b)) {
		return string(b)
	}
	return "0x" + strings.ToUpper(hex.EncodeToString(b))
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
