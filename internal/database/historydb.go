package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/linkcast/internal/model"
)

// DBFileName is the name of the database file inside the data directory.
const DBFileName = "linkcast.db"

// Link kinds stored in scan_links.kind.
const (
	KindInternal    = "internal"
	KindExternal    = "external"
	KindDenied      = "denied"
	KindHopInternal = "hop-internal"
)

// HistoryDB provides SQLite-based storage for scans and uploads.
//
// Design decision: Links are stored one row per URL rather than as a JSON
// blob so that history diffs and URL listings are plain SQL queries.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (run a scan first)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a new file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- One row per scanned start URL
	CREATE TABLE IF NOT EXISTS scans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		start_url TEXT NOT NULL,
		host TEXT NOT NULL,
		crawl_external INTEGER NOT NULL DEFAULT 0,
		reachable INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		timestamp TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scans_start_url ON scans(start_url);

	-- Links found on the start page or on a one-hop page
	CREATE TABLE IF NOT EXISTS scan_links (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scan_id INTEGER NOT NULL REFERENCES scans(id) ON DELETE CASCADE,
		source_url TEXT NOT NULL,
		url TEXT NOT NULL,
		kind TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_links_scan ON scan_links(scan_id, kind);

	-- External pages visited during the one-hop crawl
	CREATE TABLE IF NOT EXISTS scan_hops (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scan_id INTEGER NOT NULL REFERENCES scans(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		reachable INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_hops_scan ON scan_hops(scan_id);

	-- Platform responses of successful uploads
	CREATE TABLE IF NOT EXISTS uploads (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		platform TEXT NOT NULL,
		content_path TEXT NOT NULL,
		caption TEXT NOT NULL,
		status_code INTEGER NOT NULL,
		remote_id TEXT,
		response TEXT,
		timestamp TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_uploads_platform ON uploads(platform);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// ScanMetadata contains summary information about a stored scan.
// This is used for displaying scan history without loading every link.
type ScanMetadata struct {
	ID            int64     `json:"id"`
	StartURL      string    `json:"start_url"`
	Host          string    `json:"host"`
	CrawlExternal bool      `json:"crawl_external"`
	Reachable     bool      `json:"reachable"`
	Timestamp     time.Time `json:"timestamp"`
	InternalCount int       `json:"internal_count"`
	ExternalCount int       `json:"external_count"`
	DeniedCount   int       `json:"denied_count"`
	HopCount      int       `json:"hop_count"`
}

// SaveScan stores a scan result with all of its links in one transaction
// and returns the new scan id. result.ID is set on success.
func (hdb *HistoryDB) SaveScan(ctx context.Context, result *model.ScanResult) (id int64, err error) {
	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
	INSERT INTO scans (start_url, host, crawl_external, reachable, duration_ms, timestamp)
	VALUES (?, ?, ?, ?, ?, ?)
	`,
		result.StartURL,
		result.Host,
		result.CrawlExternal,
		result.Reachable,
		result.Duration.Milliseconds(),
		formatTimestamp(result.StartedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert scan: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get scan id: %w", err)
	}

	linkStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO scan_links (scan_id, source_url, url, kind) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare link insert: %w", err)
	}
	defer linkStmt.Close()

	insertLinks := func(source, kind string, urls []string) error {
		for _, u := range urls {
			if _, err := linkStmt.ExecContext(ctx, id, source, u, kind); err != nil {
				return fmt.Errorf("failed to insert %s link: %w", kind, err)
			}
		}
		return nil
	}

	if err = insertLinks(result.StartURL, KindInternal, result.Links.Internal.Sorted()); err != nil {
		return 0, err
	}
	if err = insertLinks(result.StartURL, KindExternal, result.Links.External.Sorted()); err != nil {
		return 0, err
	}
	if err = insertLinks(result.StartURL, KindDenied, result.Links.Denied.Sorted()); err != nil {
		return 0, err
	}

	for _, hop := range result.Hops {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO scan_hops (scan_id, url, reachable) VALUES (?, ?, ?)`,
			id, hop.URL, hop.Reachable,
		); err != nil {
			return 0, fmt.Errorf("failed to insert hop: %w", err)
		}
		if err = insertLinks(hop.URL, KindHopInternal, hop.Internal); err != nil {
			return 0, err
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit scan: %w", err)
	}
	result.ID = id
	return id, nil
}

// scanMetadataQuery selects ScanMetadata columns; callers append WHERE and ORDER BY.
const scanMetadataQuery = `
	SELECT s.id, s.start_url, s.host, s.crawl_external, s.reachable, s.timestamp,
		(SELECT COUNT(*) FROM scan_links l WHERE l.scan_id = s.id AND l.kind = 'internal'),
		(SELECT COUNT(*) FROM scan_links l WHERE l.scan_id = s.id AND l.kind = 'external'),
		(SELECT COUNT(*) FROM scan_links l WHERE l.scan_id = s.id AND l.kind = 'denied'),
		(SELECT COUNT(*) FROM scan_hops h WHERE h.scan_id = s.id)
	FROM scans s
	`

// ListScans returns the stored scans of startURL, newest first.
// An empty startURL lists every scan.
func (hdb *HistoryDB) ListScans(ctx context.Context, startURL string) ([]ScanMetadata, error) {
	return hdb.queryScans(ctx, startURL, -1)
}

// LatestScans returns at most n scans of startURL, newest first.
func (hdb *HistoryDB) LatestScans(ctx context.Context, startURL string, n int) ([]ScanMetadata, error) {
	if n <= 0 {
		return []ScanMetadata{}, nil
	}
	return hdb.queryScans(ctx, startURL, n)
}

func (hdb *HistoryDB) queryScans(ctx context.Context, startURL string, limit int) ([]ScanMetadata, error) {
	query := scanMetadataQuery
	args := make([]interface{}, 0, 2)
	if startURL != "" {
		query += " WHERE s.start_url = ?"
		args = append(args, startURL)
	}
	// Ids grow with insertion, so they order scans more precisely than timestamps.
	query += " ORDER BY s.id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer rows.Close()

	results := make([]ScanMetadata, 0)
	for rows.Next() {
		var meta ScanMetadata
		var timestamp string
		if err := rows.Scan(
			&meta.ID,
			&meta.StartURL,
			&meta.Host,
			&meta.CrawlExternal,
			&meta.Reachable,
			&timestamp,
			&meta.InternalCount,
			&meta.ExternalCount,
			&meta.DeniedCount,
			&meta.HopCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}
		meta.Timestamp = parseTimestamp(timestamp)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetScanLinks returns the start page links of a stored scan.
// Hop links are not included; use GetScan for those.
func (hdb *HistoryDB) GetScanLinks(ctx context.Context, id int64) (model.LinkSet, error) {
	links := model.NewLinkSet()

	rows, err := hdb.db.QueryContext(ctx, `
	SELECT url, kind FROM scan_links
	WHERE scan_id = ? AND kind IN ('internal', 'external', 'denied')
	`, id)
	if err != nil {
		return links, fmt.Errorf("failed to get scan links: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u, kind string
		if err := rows.Scan(&u, &kind); err != nil {
			return links, fmt.Errorf("failed to scan link: %w", err)
		}
		switch kind {
		case KindInternal:
			links.Internal.Add(u)
		case KindExternal:
			links.External.Add(u)
		case KindDenied:
			links.Denied.Add(u)
		}
	}

	return links, rows.Err()
}

// GetScan rebuilds a full scan result, including hops, from the database.
// It returns nil and no error when no scan has the given id.
func (hdb *HistoryDB) GetScan(ctx context.Context, id int64) (*model.ScanResult, error) {
	var (
		result     model.ScanResult
		timestamp  string
		durationMS int64
	)
	err := hdb.db.QueryRowContext(ctx, `
	SELECT id, start_url, host, crawl_external, reachable, duration_ms, timestamp
	FROM scans WHERE id = ?
	`, id).Scan(
		&result.ID,
		&result.StartURL,
		&result.Host,
		&result.CrawlExternal,
		&result.Reachable,
		&durationMS,
		&timestamp,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan: %w", err)
	}
	result.StartedAt = parseTimestamp(timestamp)
	result.Duration = time.Duration(durationMS) * time.Millisecond

	if result.Links, err = hdb.GetScanLinks(ctx, id); err != nil {
		return nil, err
	}

	hops, err := hdb.db.QueryContext(ctx,
		`SELECT url, reachable FROM scan_hops WHERE scan_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get hops: %w", err)
	}
	defer hops.Close()

	hopIndex := make(map[string]int)
	result.Hops = make([]model.HopResult, 0)
	for hops.Next() {
		var hop model.HopResult
		if err := hops.Scan(&hop.URL, &hop.Reachable); err != nil {
			return nil, fmt.Errorf("failed to scan hop: %w", err)
		}
		hop.Internal = make([]string, 0)
		hopIndex[hop.URL] = len(result.Hops)
		result.Hops = append(result.Hops, hop)
	}
	if err := hops.Err(); err != nil {
		return nil, err
	}

	links, err := hdb.db.QueryContext(ctx, `
	SELECT source_url, url FROM scan_links
	WHERE scan_id = ? AND kind = 'hop-internal'
	ORDER BY source_url, url
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get hop links: %w", err)
	}
	defer links.Close()

	for links.Next() {
		var source, u string
		if err := links.Scan(&source, &u); err != nil {
			return nil, fmt.Errorf("failed to scan hop link: %w", err)
		}
		if i, ok := hopIndex[source]; ok {
			result.Hops[i].Internal = append(result.Hops[i].Internal, u)
		}
	}

	return &result, links.Err()
}

// ListScannedURLs returns every distinct start URL that has been scanned.
func (hdb *HistoryDB) ListScannedURLs(ctx context.Context) ([]string, error) {
	rows, err := hdb.db.QueryContext(ctx, `SELECT DISTINCT start_url FROM scans ORDER BY start_url`)
	if err != nil {
		return nil, fmt.Errorf("failed to list scanned URLs: %w", err)
	}
	defer rows.Close()

	urls := make([]string, 0)
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan URL: %w", err)
		}
		urls = append(urls, u)
	}

	return urls, rows.Err()
}

// SaveUpload stores an upload response and sets result.ID.
func (hdb *HistoryDB) SaveUpload(ctx context.Context, result *model.UploadResult) (int64, error) {
	uploadedAt := result.UploadedAt
	if uploadedAt.IsZero() {
		uploadedAt = time.Now()
	}

	res, err := hdb.db.ExecContext(ctx, `
	INSERT INTO uploads (platform, content_path, caption, status_code, remote_id, response, timestamp)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		string(result.Platform),
		result.ContentPath,
		result.Caption,
		result.StatusCode,
		result.RemoteID,
		result.RawResponse,
		formatTimestamp(uploadedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save upload: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get upload id: %w", err)
	}
	result.ID = id
	return id, nil
}

// ListUploads returns stored uploads, newest first.
// An empty platform lists uploads of every platform.
func (hdb *HistoryDB) ListUploads(ctx context.Context, platform model.Platform) ([]*model.UploadResult, error) {
	query := `
	SELECT id, platform, content_path, caption, status_code, remote_id, response, timestamp
	FROM uploads
	`
	args := make([]interface{}, 0, 1)
	if platform != "" {
		query += " WHERE platform = ?"
		args = append(args, string(platform))
	}
	query += " ORDER BY id DESC"

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	defer rows.Close()

	results := make([]*model.UploadResult, 0)
	for rows.Next() {
		var (
			r         model.UploadResult
			platform  string
			remoteID  sql.NullString
			response  sql.NullString
			timestamp string
		)
		if err := rows.Scan(
			&r.ID,
			&platform,
			&r.ContentPath,
			&r.Caption,
			&r.StatusCode,
			&remoteID,
			&response,
			&timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan upload: %w", err)
		}
		r.Platform = model.Platform(platform)
		r.RemoteID = remoteID.String
		r.RawResponse = response.String
		r.UploadedAt = parseTimestamp(timestamp)
		results = append(results, &r)
	}

	return results, rows.Err()
}

// formatTimestamp stores times in UTC so that parseTimestamp can read them back.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,          // written by formatTimestamp
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
