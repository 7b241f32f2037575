package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"hvacquote/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS tonnage_codes (
  code TEXT PRIMARY KEY,
  tons REAL NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS partners (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  addressLine1 TEXT,
  city TEXT,
  state TEXT,
  postalCode TEXT,
  latitude REAL,
  longitude REAL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(name, addressLine1)
);

CREATE TABLE IF NOT EXISTS requests (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  provider TEXT NOT NULL,
  messageId TEXT NOT NULL,
  subject TEXT,
  sender TEXT,
  receivedAt TEXT,
  hash TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'fetched',
  rawRef TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(provider, messageId)
);

CREATE TABLE IF NOT EXISTS quote_lines (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  requestId INTEGER NOT NULL,
  position INTEGER NOT NULL,
  model TEXT NOT NULL,
  family TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  tons REAL,
  tier TEXT,
  unitPrice TEXT,
  lineTotal TEXT,
  status TEXT NOT NULL,
  reason TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(requestId, position),
  FOREIGN KEY(requestId) REFERENCES requests(id)
);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  requestId INTEGER,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(requestId) REFERENCES requests(id)
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) UpsertTonnageCodes(codes []internal.TonnageCode) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO tonnage_codes (code, tons) VALUES (?, ?)
ON CONFLICT(code) DO UPDATE SET tons = excluded.tons, updatedAt = CURRENT_TIMESTAMP
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range codes {
		if _, err := stmt.Exec(c.Code, c.Tons); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListTonnageCodes() ([]internal.TonnageCode, error) {
	rows, err := d.conn.Query(`SELECT code, tons FROM tonnage_codes`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.TonnageCode
	for rows.Next() {
		var c internal.TonnageCode
		if err := rows.Scan(&c.Code, &c.Tons); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (d *DB) UpsertPartners(partners []internal.Partner) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO partners (name, addressLine1, city, state, postalCode, latitude, longitude)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(name, addressLine1) DO UPDATE SET
  city=excluded.city,
  state=excluded.state,
  postalCode=excluded.postalCode,
  latitude=COALESCE(excluded.latitude, partners.latitude),
  longitude=COALESCE(excluded.longitude, partners.longitude),
  updatedAt=CURRENT_TIMESTAMP
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range partners {
		if _, err := stmt.Exec(p.Name, p.AddressLine1, p.City, p.State, p.PostalCode, p.Latitude, p.Longitude); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListPartners() ([]internal.Partner, error) {
	return d.queryPartners(`SELECT id, name, addressLine1, city, state, postalCode, latitude, longitude FROM partners ORDER BY name ASC`)
}

func (d *DB) ListPartnersMissingCoords() ([]internal.Partner, error) {
	return d.queryPartners(`SELECT id, name, addressLine1, city, state, postalCode, latitude, longitude FROM partners WHERE latitude IS NULL OR longitude IS NULL ORDER BY id ASC`)
}

func (d *DB) queryPartners(query string) ([]internal.Partner, error) {
	rows, err := d.conn.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.Partner
	for rows.Next() {
		var p internal.Partner
		if err := rows.Scan(&p.ID, &p.Name, &p.AddressLine1, &p.City, &p.State, &p.PostalCode, &p.Latitude, &p.Longitude); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (d *DB) UpdatePartnerCoords(partnerID int, lat, lng float64) error {
	_, err := d.conn.Exec(`UPDATE partners SET latitude = ?, longitude = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, lat, lng, partnerID)
	return err
}

func (d *DB) UpsertRequest(provider, messageID, subject, sender, receivedAt, hash, rawRef, status string) (internal.RequestRow, error) {
	_, err := d.conn.Exec(`
INSERT INTO requests (provider, messageId, subject, sender, receivedAt, hash, status, rawRef)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(provider, messageId) DO UPDATE SET
  subject=excluded.subject,
  sender=excluded.sender,
  receivedAt=excluded.receivedAt,
  hash=excluded.hash,
  rawRef=excluded.rawRef,
  updatedAt=CURRENT_TIMESTAMP
`, provider, messageID, subject, sender, receivedAt, hash, status, rawRef)
	if err != nil {
		return internal.RequestRow{}, err
	}

	row, err := d.GetRequestByProviderMessageID(provider, messageID)
	if err != nil {
		return internal.RequestRow{}, err
	}
	if row == nil {
		return internal.RequestRow{}, errors.New("failed to upsert request")
	}
	return *row, nil
}

func (d *DB) GetRequestByProviderMessageID(provider, messageID string) (*internal.RequestRow, error) {
	var row internal.RequestRow
	err := d.conn.QueryRow(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM requests WHERE provider = ? AND messageId = ?
`, provider, messageID).Scan(
		&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) MustRequestByProviderMessageID(provider, messageID string) (internal.RequestRow, error) {
	row, err := d.GetRequestByProviderMessageID(provider, messageID)
	if err != nil {
		return internal.RequestRow{}, err
	}
	if row == nil {
		return internal.RequestRow{}, fmt.Errorf("request not found: provider=%s messageId=%s", provider, messageID)
	}
	return *row, nil
}

func (d *DB) GetRequestByID(id int) (*internal.RequestRow, error) {
	var row internal.RequestRow
	err := d.conn.QueryRow(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM requests WHERE id = ?
`, id).Scan(
		&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) ListRequestsByStatus(status string, limit int) ([]internal.RequestRow, error) {
	rows, err := d.conn.Query(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM requests WHERE status = ? ORDER BY receivedAt ASC LIMIT ?
`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RequestRow
	for rows.Next() {
		var row internal.RequestRow
		if err := rows.Scan(&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) UpdateRequestStatus(requestID int, status string) error {
	_, err := d.conn.Exec(`UPDATE requests SET status = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, status, requestID)
	return err
}

func (d *DB) ClearRequestLines(requestID int) error {
	_, err := d.conn.Exec(`DELETE FROM quote_lines WHERE requestId = ?`, requestID)
	return err
}

func (d *DB) InsertQuoteLines(requestID int, lines []internal.QuoteLineRow) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO quote_lines (requestId, position, model, family, quantity, tons, tier, unitPrice, lineTotal, status, reason)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, l := range lines {
		if _, err := stmt.Exec(
			requestID, l.Position, l.Model, l.Family, l.Quantity,
			l.Tons, l.Tier, l.UnitPrice, l.LineTotal, string(l.Status), l.Reason,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) GetQuoteLines(requestID int) ([]internal.QuoteLineRow, error) {
	rows, err := d.conn.Query(`
SELECT position, model, family, quantity, tons, tier, unitPrice, lineTotal, status, reason
FROM quote_lines WHERE requestId = ? ORDER BY position ASC
`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.QuoteLineRow
	for rows.Next() {
		var l internal.QuoteLineRow
		var status string
		if err := rows.Scan(&l.Position, &l.Model, &l.Family, &l.Quantity, &l.Tons, &l.Tier, &l.UnitPrice, &l.LineTotal, &status, &l.Reason); err != nil {
			return nil, err
		}
		l.Status = internal.QuoteLineStatus(status)
		out = append(out, l)
	}
	return out, rows.Err()
}

func (d *DB) InsertRun(traceID string, requestID int, timings map[string]float64, counts map[string]int) error {
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.Exec(`INSERT INTO runs (traceId, requestId, timingsJson, countsJson) VALUES (?, ?, ?, ?)`, traceID, requestID, string(timingsJSON), string(countsJSON))
	return err
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
