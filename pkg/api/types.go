package api

import (
	"github.com/cfiledb/cfiledb/pkg/store"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// PutColumnRequest is the body of a column write
type PutColumnRequest struct {
	Values []uint32 `json:"values"`
}

// ValueResponse is the body of a single value read
type ValueResponse struct {
	Column  string `json:"column"`
	Ordinal uint32 `json:"ordinal"`
	Value   uint32 `json:"value"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port    int
	Bind    string
	APIKey  string
	DataDir string
}

// IColumnStore defines the interface for the column store operations
type IColumnStore interface {
	PutColumn(name string, values []uint32) error
	GetValue(name string, ordinal uint32) (uint32, error)
	DeleteColumn(name string) error
	ListColumns() ([]string, error)
	ColumnInfo(name string) (store.ColumnInfo, error)
	Stats() (*store.StoreStats, error)
}
