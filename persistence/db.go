// Package persistence provides SQLite-based storage for actor nutrition state.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/pthm-cable/nutrition/telemetry"
)

// ErrNoSnapshot is returned by LoadSnapshot when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no saved snapshot")

// DB wraps a SQLite connection for actor state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS actors (
		id TEXT PRIMARY KEY,
		join_tick INTEGER NOT NULL,
		levels_json TEXT NOT NULL,
		effects_json TEXT NOT NULL,
		lifetime_json TEXT
	);

	CREATE TABLE IF NOT EXISTS effect_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		actor TEXT NOT NULL,
		effect TEXT NOT NULL,
		ref TEXT NOT NULL,
		edge TEXT NOT NULL,
		amplifier INTEGER NOT NULL,
		previous INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_effect_events_tick ON effect_events(tick);
	CREATE INDEX IF NOT EXISTS idx_effect_events_actor ON effect_events(actor);
	`
	_, err := db.conn.Exec(schema)
	return err
}

type actorRow struct {
	ID           string         `db:"id"`
	JoinTick     int32          `db:"join_tick"`
	LevelsJSON   string         `db:"levels_json"`
	EffectsJSON  string         `db:"effects_json"`
	LifetimeJSON sql.NullString `db:"lifetime_json"`
}

// SaveActors writes all actors to the database (full replace).
func (db *DB) SaveActors(actors []telemetry.ActorState) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM actors"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO actors
		(id, join_tick, levels_json, effects_json, lifetime_json)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range actors {
		levelsJSON, err := json.Marshal(a.Levels)
		if err != nil {
			return fmt.Errorf("encode levels for %s: %w", a.ID, err)
		}
		effects := a.Effects
		if effects == nil {
			effects = map[string]telemetry.EffectState{}
		}
		effectsJSON, err := json.Marshal(effects)
		if err != nil {
			return fmt.Errorf("encode effects for %s: %w", a.ID, err)
		}

		var joinTick int32
		var lifetime sql.NullString
		if a.Lifetime != nil {
			joinTick = a.Lifetime.JoinTick
			data, err := json.Marshal(a.Lifetime)
			if err != nil {
				return fmt.Errorf("encode lifetime for %s: %w", a.ID, err)
			}
			lifetime = sql.NullString{String: string(data), Valid: true}
		}

		if _, err := stmt.Exec(a.ID, joinTick, string(levelsJSON), string(effectsJSON), lifetime); err != nil {
			return fmt.Errorf("insert actor %s: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

// LoadActors reads every saved actor, ordered by id.
func (db *DB) LoadActors() ([]telemetry.ActorState, error) {
	var rows []actorRow
	if err := db.conn.Select(&rows, "SELECT id, join_tick, levels_json, effects_json, lifetime_json FROM actors ORDER BY id"); err != nil {
		return nil, err
	}

	actors := make([]telemetry.ActorState, 0, len(rows))
	for _, r := range rows {
		a := telemetry.ActorState{ID: r.ID}
		if err := json.Unmarshal([]byte(r.LevelsJSON), &a.Levels); err != nil {
			return nil, fmt.Errorf("decode levels for %s: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.EffectsJSON), &a.Effects); err != nil {
			return nil, fmt.Errorf("decode effects for %s: %w", r.ID, err)
		}
		if r.LifetimeJSON.Valid {
			a.Lifetime = &telemetry.LifetimeStatsJSON{}
			if err := json.Unmarshal([]byte(r.LifetimeJSON.String), a.Lifetime); err != nil {
				return nil, fmt.Errorf("decode lifetime for %s: %w", r.ID, err)
			}
		}
		actors = append(actors, a)
	}
	return actors, nil
}

// SaveEffectEvents appends effect transitions. Other event types are skipped.
func (db *DB) SaveEffectEvents(events []telemetry.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		if !e.IsEffect() {
			continue
		}
		r := e.ToEffectRecord()
		_, err := tx.Exec(
			`INSERT INTO effect_events (tick, actor, effect, ref, edge, amplifier, previous)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.Tick, r.Actor, r.Effect, r.Ref, r.Edge, r.Amplifier, r.Previous,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RecentEffectEvents returns the most recent N effect transitions, newest first.
func (db *DB) RecentEffectEvents(limit int) ([]telemetry.EffectRecord, error) {
	var rows []struct {
		Tick      int32  `db:"tick"`
		Actor     string `db:"actor"`
		Effect    string `db:"effect"`
		Ref       string `db:"ref"`
		Edge      string `db:"edge"`
		Amplifier int    `db:"amplifier"`
		Previous  int    `db:"previous"`
	}
	err := db.conn.Select(&rows,
		"SELECT tick, actor, effect, ref, edge, amplifier, previous FROM effect_events ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}

	records := make([]telemetry.EffectRecord, len(rows))
	for i, r := range rows {
		records[i] = telemetry.EffectRecord(r)
	}
	return records, nil
}

// SaveMeta stores a key-value pair in the metadata table.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	return value, err
}

// SaveSnapshot performs a full save of a nutrition snapshot.
func (db *DB) SaveSnapshot(s *telemetry.Snapshot) error {
	slog.Info("saving nutrition state", "tick", s.Tick, "actors", len(s.Actors))

	if err := db.SaveActors(s.Actors); err != nil {
		return fmt.Errorf("save actors: %w", err)
	}
	nutrients, err := json.Marshal(s.Nutrients)
	if err != nil {
		return fmt.Errorf("encode nutrients: %w", err)
	}
	if err := db.SaveMeta("nutrients", string(nutrients)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	if err := db.SaveMeta("last_tick", strconv.Itoa(int(s.Tick))); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	if err := db.SaveMeta("version", strconv.Itoa(s.Version)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	slog.Info("nutrition state saved")
	return nil
}

// LoadSnapshot reads the last saved snapshot.
// Returns ErrNoSnapshot if SaveSnapshot has never run against this database.
func (db *DB) LoadSnapshot() (*telemetry.Snapshot, error) {
	lastTick, err := db.GetMeta("last_tick")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("load meta: %w", err)
	}
	tick, err := strconv.Atoi(lastTick)
	if err != nil {
		return nil, fmt.Errorf("parse last_tick %q: %w", lastTick, err)
	}

	s := &telemetry.Snapshot{Version: telemetry.SnapshotVersion, Tick: int32(tick)}
	if v, err := db.GetMeta("version"); err == nil {
		if n, err := strconv.Atoi(v); err == nil {
			s.Version = n
		}
	}
	if raw, err := db.GetMeta("nutrients"); err == nil {
		if err := json.Unmarshal([]byte(raw), &s.Nutrients); err != nil {
			return nil, fmt.Errorf("decode nutrients: %w", err)
		}
	}

	s.Actors, err = db.LoadActors()
	if err != nil {
		return nil, fmt.Errorf("load actors: %w", err)
	}
	return s, nil
}
