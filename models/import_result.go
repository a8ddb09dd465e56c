package models

import "time"

// ImportKind distinguishes the two import paths.
type ImportKind string

const (
	KindThread ImportKind = "thread"
	KindWeb    ImportKind = "web"
)

// ImportStatus is the outcome of one import call.
type ImportStatus string

const (
	StatusImported ImportStatus = "imported" // a new document was written
	StatusExisting ImportStatus = "existing" // the target already existed and was opened
	StatusAborted  ImportStatus = "aborted"  // the source could not be fetched; nothing written
)

// AssetRecord describes one binary written next to a document.
type AssetRecord struct {
	Path        string `json:"path"`
	SourceURL   string `json:"source_url"`
	SizeBytes   int64  `json:"size_bytes"`
	ContentHash string `json:"content_hash"`
}

// ImportResult is returned by both importers.
type ImportResult struct {
	Kind         ImportKind    `json:"kind"`
	Status       ImportStatus  `json:"status"`
	SourceURL    string        `json:"source_url"`
	DocumentPath string        `json:"document_path,omitempty"`
	ThreadID     string        `json:"thread_id,omitempty"`
	PageCount    int           `json:"page_count,omitempty"`
	Missing      int           `json:"missing,omitempty"` // media that could not be fetched
	Assets       []AssetRecord `json:"assets,omitempty"`
}

// ImportRecord is one row of the import ledger.
type ImportRecord struct {
	ImportID     int64      `json:"import_id"`
	SourceURL    string     `json:"source_url"`
	Domain       string     `json:"domain"`
	Kind         ImportKind `json:"kind"`
	DocumentPath string     `json:"document_path"`
	ThreadID     string     `json:"thread_id,omitempty"`
	PageCount    int        `json:"page_count"`
	Missing      int        `json:"missing"`
	AssetCount   int        `json:"asset_count"`
	AssetBytes   int64      `json:"asset_bytes"`
	CreatedAt    time.Time  `json:"created_at"`
}
