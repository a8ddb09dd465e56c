package db

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/dtnitsch/url-importer/models"
)

// RecordImport stores a completed import and its assets, returning the
// import_id. Only imported results belong in the ledger.
func (db *DB) RecordImport(result *models.ImportResult) (int64, error) {
	if result == nil || result.Status != models.StatusImported {
		return 0, errors.New("only imported results can be recorded")
	}

	parsed, err := url.Parse(result.SourceURL)
	if err != nil {
		return 0, fmt.Errorf("failed to parse URL: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // no-op after Commit

	res, err := tx.Exec(`
		INSERT INTO imports (source_url, domain, kind, document_path, thread_id, page_count, missing_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, result.SourceURL, parsed.Host, string(result.Kind), result.DocumentPath, result.ThreadID, result.PageCount, result.Missing)
	if err != nil {
		return 0, fmt.Errorf("failed to insert import: %w", err)
	}

	importID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get import ID: %w", err)
	}

	for _, a := range result.Assets {
		_, err = tx.Exec(`
			INSERT INTO assets (import_id, path, source_url, size_bytes, content_hash)
			VALUES (?, ?, ?, ?, ?)
		`, importID, a.Path, a.SourceURL, a.SizeBytes, a.ContentHash)
		if err != nil {
			return 0, fmt.Errorf("failed to insert asset: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return importID, nil
}

// ListImports returns the most recent imports first. limit <= 0 returns all.
func (db *DB) ListImports(limit int) ([]models.ImportRecord, error) {
	query := `
		SELECT i.import_id, i.source_url, i.domain, i.kind, i.document_path,
		       COALESCE(i.thread_id, ''), i.page_count, i.missing_count,
		       COUNT(a.asset_id), COALESCE(SUM(a.size_bytes), 0), i.created_at
		FROM imports i
		LEFT JOIN assets a ON a.import_id = i.import_id
		GROUP BY i.import_id
		ORDER BY i.created_at DESC, i.import_id DESC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query imports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []models.ImportRecord
	for rows.Next() {
		var r models.ImportRecord
		var kind string
		err := rows.Scan(&r.ImportID, &r.SourceURL, &r.Domain, &kind, &r.DocumentPath,
			&r.ThreadID, &r.PageCount, &r.Missing, &r.AssetCount, &r.AssetBytes, &r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan import: %w", err)
		}
		r.Kind = models.ImportKind(kind)
		records = append(records, r)
	}
	return records, rows.Err()
}

// ListAssets returns the assets written by one import.
func (db *DB) ListAssets(importID int64) ([]models.AssetRecord, error) {
	rows, err := db.Query(`
		SELECT path, source_url, size_bytes, content_hash
		FROM assets
		WHERE import_id = ?
		ORDER BY asset_id
	`, importID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var assets []models.AssetRecord
	for rows.Next() {
		var a models.AssetRecord
		if err := rows.Scan(&a.Path, &a.SourceURL, &a.SizeBytes, &a.ContentHash); err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

// CountImportsBySource returns how many times sourceURL was imported.
func (db *DB) CountImportsBySource(sourceURL string) (int, error) {
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM imports WHERE source_url = ?", sourceURL).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count imports: %w", err)
	}
	return n, nil
}
