package model

import "errors"

var (
	// ErrUnsupportedFormat is returned when a dataset file has an unknown extension or shape
	ErrUnsupportedFormat = errors.New("unsupported dataset format")

	// ErrEmptyDataset is returned when a dataset source defines no fields
	ErrEmptyDataset = errors.New("dataset has no fields")

	// ErrDatasetNotFound is returned when a dataset name is not in the catalog
	ErrDatasetNotFound = errors.New("dataset not found")

	// ErrDuplicateDataset is returned when two sources produce the same dataset name
	ErrDuplicateDataset = errors.New("duplicate dataset name")

	// ErrRecordNotFound is returned when no record has the requested key
	ErrRecordNotFound = errors.New("record not found")

	// ErrUnknownField is returned when a field name is not part of a dataset
	ErrUnknownField = errors.New("unknown field")

	// ErrNestedColumn is returned when a Parquet schema is not flat
	ErrNestedColumn = errors.New("nested columns are not supported")

	// ErrDuplicateKey is returned when two records share a key value
	ErrDuplicateKey = errors.New("duplicate record key")
)
