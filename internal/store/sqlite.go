// Package store persists star-system records in SQLite, keyed by
// universal hex coordinates so that viewport lookups are plain integer
// range scans.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"travmap.dev/internal/hexmap"
)

// System is one stored star system. Attribute strings stay opaque at
// this layer; the client decodes them.
type System struct {
	Hex   hexmap.UniversalHex
	Name  string
	UWP   string
	Stars []string
	Zone  string
}

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for the bulk-load workload of cmd/seed.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS systems (
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			key TEXT NOT NULL,
			name TEXT NOT NULL,
			uwp TEXT NOT NULL,
			stars_json TEXT NOT NULL,
			zone TEXT NOT NULL,
			PRIMARY KEY (x, y)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_systems_y_x ON systems(y, x);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertSystems writes the given systems in one transaction.
func (s *Store) UpsertSystems(ctx context.Context, systems []System) error {
	if len(systems) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO systems (x, y, key, name, uwp, stars_json, zone)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (x, y) DO UPDATE SET
			key=excluded.key, name=excluded.name, uwp=excluded.uwp,
			stars_json=excluded.stars_json, zone=excluded.zone`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, sys := range systems {
		stars, err := json.Marshal(sys.Stars)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, sys.Hex.X, sys.Hex.Y, sys.Hex.Key(), sys.Name, sys.UWP, string(stars), sys.Zone); err != nil {
			return fmt.Errorf("upsert %s: %w", sys.Hex.Key(), err)
		}
	}
	return tx.Commit()
}

// SystemsInRange returns every stored system inside the closed
// rectangle spanned by the two corners, in the same row-major order
// the coordinate core enumerates hexes.
func (s *Store) SystemsInRange(ctx context.Context, a, b hexmap.UniversalHex) ([]System, error) {
	minX, maxX := a.X, b.X
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	minY, maxY := a.Y, b.Y
	if minY > maxY {
		minY, maxY = maxY, minY
	}

	rows, err := s.db.QueryContext(ctx, `SELECT x, y, name, uwp, stars_json, zone FROM systems
		WHERE x BETWEEN ? AND ? AND y BETWEEN ? AND ?
		ORDER BY y, x`, minX, maxX, minY, maxY)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []System
	for rows.Next() {
		var sys System
		var starsJSON string
		if err := rows.Scan(&sys.Hex.X, &sys.Hex.Y, &sys.Name, &sys.UWP, &starsJSON, &sys.Zone); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(starsJSON), &sys.Stars); err != nil {
			return nil, fmt.Errorf("stars for %s: %w", sys.Hex.Key(), err)
		}
		out = append(out, sys)
	}
	return out, rows.Err()
}

// SystemsInSector returns the stored systems of one whole sector.
func (s *Store) SystemsInSector(ctx context.Context, sectorX, sectorY int) ([]System, error) {
	first := hexmap.SectorHex{SectorX: sectorX, SectorY: sectorY, LocalX: 1, LocalY: 1}
	last := hexmap.SectorHex{SectorX: sectorX, SectorY: sectorY, LocalX: hexmap.SectorColumns, LocalY: hexmap.SectorRows}
	return s.SystemsInRange(ctx, first.Universal(), last.Universal())
}

// HasSector reports whether any system is stored for the sector.
func (s *Store) HasSector(ctx context.Context, sectorX, sectorY int) (bool, error) {
	first := hexmap.SectorHex{SectorX: sectorX, SectorY: sectorY, LocalX: 1, LocalY: 1}.Universal()
	last := hexmap.SectorHex{SectorX: sectorX, SectorY: sectorY, LocalX: hexmap.SectorColumns, LocalY: hexmap.SectorRows}.Universal()
	minY, maxY := last.Y, first.Y
	if minY > maxY {
		minY, maxY = maxY, minY
	}
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM systems
		WHERE x BETWEEN ? AND ? AND y BETWEEN ? AND ? LIMIT 1`,
		first.X, last.X, minY, maxY).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
