package model

import (
	"fmt"

	"github.com/hangxie/parquet-go/v2/parquet"
	"github.com/hangxie/parquet-go/v2/reader"
	pio "github.com/hangxie/parquet-tools/io"
)

// LoadParquet reads a Parquet file with a flat schema into one dataset.
// uri may be any location parquet-tools can open (local, s3://, gs://, ...).
func LoadParquet(uri string, opt LoadOption) (*Dataset, error) {
	pr, err := pio.NewParquetFileReader(uri, opt.ReadOption)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", uri, err)
	}
	defer func() { _ = pr.ReadStopWithError() }()

	d, err := readParquet(DatasetName(uri), pr, opt.KeyField)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", uri, err)
	}
	d.Source = Source{URI: uri, Format: FormatParquet, Size: totalCompressedSize(pr.Footer)}
	return d, nil
}

func readParquet(name string, pr *reader.ParquetReader, keyField string) (*Dataset, error) {
	leaves, err := flatColumns(pr.Footer.Schema)
	if err != nil {
		return nil, err
	}

	numRows := pr.Footer.NumRows
	rows := make([][]any, numRows)
	for r := range rows {
		rows[r] = make([]any, len(leaves))
	}

	names := make([]string, len(leaves))
	for c, elem := range leaves {
		names[c] = elem.Name

		values, err := readColumn(pr, c, numRows)
		if err != nil {
			return nil, fmt.Errorf("failed to read column %s: %w", elem.Name, err)
		}
		for r := range rows {
			if r < len(values) {
				rows[r][c] = parquetValue(values[r], elem)
			}
		}
	}

	return buildDataset(name, names, rows, false, keyField)
}

// readColumn reads every value of one leaf column with a fresh column
// reader, so columns can be read in any order.
func readColumn(pr *reader.ParquetReader, index int, numRows int64) ([]any, error) {
	cr, err := reader.NewParquetColumnReader(pr.PFile, 4)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cr.ReadStopWithError() }()

	values, _, _, err := cr.ReadColumnByIndex(int64(index), numRows)
	if err != nil {
		return nil, err
	}
	return values, nil
}

// totalCompressedSize sums the on-disk size of all row groups
func totalCompressedSize(meta *parquet.FileMetaData) int64 {
	if meta == nil {
		return 0
	}
	var total int64
	for _, rg := range meta.RowGroups {
		if rg.IsSetTotalCompressedSize() {
			total += rg.GetTotalCompressedSize()
			continue
		}
		for _, col := range rg.Columns {
			if col.MetaData != nil {
				total += col.MetaData.TotalCompressedSize
			}
		}
	}
	return total
}
