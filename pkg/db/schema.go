package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Imports: one row per document written to the vault
CREATE TABLE IF NOT EXISTS imports (
    import_id INTEGER PRIMARY KEY AUTOINCREMENT,
    source_url TEXT NOT NULL,
    domain TEXT NOT NULL,
    kind TEXT NOT NULL,              -- thread, web
    document_path TEXT NOT NULL,
    thread_id TEXT,
    page_count INTEGER DEFAULT 0,
    missing_count INTEGER DEFAULT 0, -- media that could not be fetched
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_imports_source ON imports(source_url);
CREATE INDEX IF NOT EXISTS idx_imports_domain ON imports(domain);
CREATE INDEX IF NOT EXISTS idx_imports_created ON imports(created_at);

-- Assets: binaries written alongside an import
CREATE TABLE IF NOT EXISTS assets (
    asset_id INTEGER PRIMARY KEY AUTOINCREMENT,
    import_id INTEGER NOT NULL,
    path TEXT NOT NULL,
    source_url TEXT NOT NULL,
    size_bytes INTEGER NOT NULL,
    content_hash TEXT NOT NULL,      -- sha256 hex
    FOREIGN KEY (import_id) REFERENCES imports(import_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_assets_import ON assets(import_id);
CREATE INDEX IF NOT EXISTS idx_assets_hash ON assets(content_hash);
`
