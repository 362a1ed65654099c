package store

import "time"

// ColumnStoreConfig holds configuration for the column store
type ColumnStoreConfig struct {
	DataDir     string // Directory for catalog and column files
	BlockSize   int    // Values per data block when writing columns
	IndexFanout int    // Entries per index block when writing columns
}

// ColumnInfo describes one stored column
type ColumnInfo struct {
	Name      string    `json:"name"`
	Rows      uint64    `json:"rows"`
	File      string    `json:"file"`
	CreatedAt time.Time `json:"created_at"`
}

// StoreStats summarizes the store contents
type StoreStats struct {
	Columns   int    `json:"columns"`
	TotalRows uint64 `json:"total_rows"`
}

// Errors
var (
	ErrColumnNotFound  = &StoreError{"column not found"}
	ErrOrdinalNotFound = &StoreError{"ordinal past end of column"}
	ErrStoreClosed     = &StoreError{"store is not open"}
	ErrInvalidName     = &StoreError{"invalid column name"}
)

// StoreError represents a column store error
type StoreError struct {
	Message string
}

func (e *StoreError) Error() string {
	return e.Message
}
