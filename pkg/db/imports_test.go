package db

import (
	"path/filepath"
	"testing"

	"github.com/dtnitsch/url-importer/models"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	database := &DB{path: ":memory:"}
	var err error
	database.DB, err = openDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := database.InitSchema(); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}

	return database
}

func threadResult(url string, assets ...models.AssetRecord) *models.ImportResult {
	return &models.ImportResult{
		Kind:         models.KindThread,
		Status:       models.StatusImported,
		SourceURL:    url,
		DocumentPath: "Tweet - 123.md",
		ThreadID:     "123",
		PageCount:    3,
		Missing:      1,
		Assets:       assets,
	}
}

func TestRecordImport(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	tests := []struct {
		name    string
		result  *models.ImportResult
		wantErr bool
	}{
		{
			name:   "thread with assets",
			result: threadResult("https://nitter.net/alice/status/123", models.AssetRecord{Path: "assets/123/image_a.jpg", SourceURL: "https://nitter.net/pic/a.jpg", SizeBytes: 10, ContentHash: "aa"}),
		},
		{
			name:   "web page without assets",
			result: &models.ImportResult{Kind: models.KindWeb, Status: models.StatusImported, SourceURL: "https://example.com/a", DocumentPath: "a.md"},
		},
		{
			name:    "existing result is rejected",
			result:  &models.ImportResult{Kind: models.KindWeb, Status: models.StatusExisting, SourceURL: "https://example.com/a"},
			wantErr: true,
		},
		{
			name:    "nil result",
			result:  nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := db.RecordImport(tt.result)
			if (err != nil) != tt.wantErr {
				t.Fatalf("RecordImport() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && id <= 0 {
				t.Errorf("RecordImport() id = %d, want > 0", id)
			}
		})
	}
}

func TestListImports(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	first, err := db.RecordImport(threadResult("https://nitter.net/alice/status/123",
		models.AssetRecord{Path: "assets/123/image_a.jpg", SourceURL: "https://nitter.net/pic/a.jpg", SizeBytes: 1000, ContentHash: "aa"},
		models.AssetRecord{Path: "assets/123/video_b.mp4", SourceURL: "https://video.test/b.mp4", SizeBytes: 2000, ContentHash: "bb"},
	))
	if err != nil {
		t.Fatalf("RecordImport() error = %v", err)
	}
	second, err := db.RecordImport(&models.ImportResult{
		Kind: models.KindWeb, Status: models.StatusImported,
		SourceURL: "https://example.com/post", DocumentPath: "Post.md",
	})
	if err != nil {
		t.Fatalf("RecordImport() error = %v", err)
	}

	records, err := db.ListImports(0)
	if err != nil {
		t.Fatalf("ListImports() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("ListImports() = %d records, want 2", len(records))
	}

	// Same second timestamps fall back to id order, newest first
	if records[0].ImportID != second || records[1].ImportID != first {
		t.Errorf("order = [%d %d], want [%d %d]", records[0].ImportID, records[1].ImportID, second, first)
	}

	thread := records[1]
	if thread.Domain != "nitter.net" {
		t.Errorf("Domain = %q, want nitter.net", thread.Domain)
	}
	if thread.Kind != models.KindThread || thread.ThreadID != "123" || thread.PageCount != 3 || thread.Missing != 1 {
		t.Errorf("thread record = %+v", thread)
	}
	if thread.AssetCount != 2 || thread.AssetBytes != 3000 {
		t.Errorf("assets = %d (%d bytes), want 2 (3000 bytes)", thread.AssetCount, thread.AssetBytes)
	}
	if thread.CreatedAt.IsZero() {
		t.Error("CreatedAt is zero")
	}

	web := records[0]
	if web.AssetCount != 0 || web.AssetBytes != 0 || web.ThreadID != "" {
		t.Errorf("web record = %+v", web)
	}

	limited, err := db.ListImports(1)
	if err != nil {
		t.Fatalf("ListImports(1) error = %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("ListImports(1) = %d records, want 1", len(limited))
	}
}

func TestListAssets(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	id, err := db.RecordImport(threadResult("https://nitter.net/alice/status/123",
		models.AssetRecord{Path: "assets/123/image_a.jpg", SourceURL: "https://nitter.net/pic/a.jpg", SizeBytes: 5, ContentHash: "aa"},
	))
	if err != nil {
		t.Fatalf("RecordImport() error = %v", err)
	}

	assets, err := db.ListAssets(id)
	if err != nil {
		t.Fatalf("ListAssets() error = %v", err)
	}
	if len(assets) != 1 || assets[0].Path != "assets/123/image_a.jpg" || assets[0].ContentHash != "aa" {
		t.Errorf("ListAssets() = %+v", assets)
	}

	none, err := db.ListAssets(id + 100)
	if err != nil {
		t.Fatalf("ListAssets() error = %v", err)
	}
	if len(none) != 0 {
		t.Errorf("ListAssets(unknown) = %d, want 0", len(none))
	}
}

func TestCountImportsBySource(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	u := "https://nitter.net/alice/status/123"
	for i := 0; i < 2; i++ {
		if _, err := db.RecordImport(threadResult(u)); err != nil {
			t.Fatalf("RecordImport() error = %v", err)
		}
	}

	n, err := db.CountImportsBySource(u)
	if err != nil {
		t.Fatalf("CountImportsBySource() error = %v", err)
	}
	if n != 2 {
		t.Errorf("CountImportsBySource() = %d, want 2", n)
	}
}

func TestOpen_CreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultDBName)

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if db.Path() != path {
		t.Errorf("Path() = %q, want %q", db.Path(), path)
	}
	if _, err := db.ListImports(0); err != nil {
		t.Errorf("ListImports() on fresh ledger error = %v", err)
	}
	_ = db.Close()

	// Reopening finds the existing schema
	db, err = Open(path)
	if err != nil {
		t.Fatalf("second Open() error = %v", err)
	}
	_ = db.Close()
}
