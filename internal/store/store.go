// Package store is the durable mirror of turtle identity and world block
// state, backed by SQLite. The registry treats it as best effort: a failed
// write is logged and in-memory state stays authoritative for the life of
// the process.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Schmarni-Dev/project-trc/internal/game"
)

// ErrNotFound is returned by point lookups that matched no row.
var ErrNotFound = errors.New("store: not found")

// Store wraps the shared connection pool. The pool is safe for concurrent
// use, so the registry's writer goroutine needs no locking above it.
type Store struct {
	db *sql.DB
}

// Open connects to the SQLite database at dsn and bootstraps the schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite permits one writer, and a :memory: database exists per
	// connection, so the pool is pinned to a single connection.
	db.SetMaxOpenConns(1)
	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS worlds (
			name TEXT NOT NULL PRIMARY KEY
		);`,
		`CREATE TABLE IF NOT EXISTS turtles (
			id INTEGER NOT NULL,
			name TEXT NOT NULL,
			inventory TEXT NOT NULL,
			position TEXT NOT NULL,
			orientation TEXT NOT NULL,
			fuel INTEGER NOT NULL,
			max_fuel INTEGER NOT NULL,
			world TEXT NOT NULL,
			PRIMARY KEY (world, id),
			FOREIGN KEY (world) REFERENCES worlds (name)
		);`,
		`CREATE TABLE IF NOT EXISTS blocks (
			chunk_key INTEGER NOT NULL,
			id TEXT NOT NULL,
			world TEXT NOT NULL,
			world_pos TEXT NOT NULL,
			is_air BOOLEAN NOT NULL,
			PRIMARY KEY (world, world_pos),
			FOREIGN KEY (world) REFERENCES worlds (name)
		);`,
		`CREATE INDEX IF NOT EXISTS blocks_world_chunk ON blocks (world, chunk_key);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureWorld creates the world row if it does not exist yet. Worlds are
// created lazily on first contact and never deleted.
func (s *Store) EnsureWorld(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO worlds (name) VALUES (?) ON CONFLICT (name) DO NOTHING;`, name)
	return err
}

// Worlds lists every known world name.
func (s *Store) Worlds(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM worlds ORDER BY name;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// GetTurtle loads one turtle row. The returned turtle is always offline;
// the registry decides online flags.
func (s *Store) GetTurtle(ctx context.Context, index game.TurtleIndex, world string) (game.Turtle, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, inventory, position, orientation, fuel, max_fuel, world
		 FROM turtles WHERE id = ? AND world = ?;`, index, world)
	t, err := scanTurtle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Turtle{}, ErrNotFound
	}
	return t, err
}

// GetTurtles loads every turtle persisted for a world.
func (s *Store) GetTurtles(ctx context.Context, world string) ([]game.Turtle, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, inventory, position, orientation, fuel, max_fuel, world
		 FROM turtles WHERE world = ? ORDER BY id;`, world)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	turtles := make([]game.Turtle, 0)
	for rows.Next() {
		t, err := scanTurtle(rows)
		if err != nil {
			return nil, err
		}
		turtles = append(turtles, t)
	}
	return turtles, rows.Err()
}

// UpsertTurtle writes a full turtle row keyed by (world, id).
func (s *Store) UpsertTurtle(ctx context.Context, t game.Turtle) error {
	inv, err := json.Marshal(t.Inventory)
	if err != nil {
		return fmt.Errorf("encode inventory: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO turtles (id, name, inventory, position, orientation, fuel, max_fuel, world)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (world, id) DO UPDATE SET
			name = excluded.name,
			inventory = excluded.inventory,
			position = excluded.position,
			orientation = excluded.orientation,
			fuel = excluded.fuel,
			max_fuel = excluded.max_fuel;`,
		t.Index, t.Name, string(inv), t.Position.StringRepr(), string(t.Orientation),
		t.Fuel, t.MaxFuel, t.World)
	return err
}

// CreateDummyTurtle persists the default row for a never-seen (index, world)
// pair and returns it.
func (s *Store) CreateDummyTurtle(ctx context.Context, index game.TurtleIndex, world string, pos game.Pos3, facing game.Orientation) (game.Turtle, error) {
	t := game.NewDummyTurtle(index, world, pos, facing)
	if err := s.EnsureWorld(ctx, world); err != nil {
		return game.Turtle{}, err
	}
	if err := s.UpsertTurtle(ctx, t); err != nil {
		return game.Turtle{}, err
	}
	return t, nil
}

// Field-narrow updates. The registry persists exactly the field a device
// packet changed so a failed write can never leave a row half-updated.

func (s *Store) UpdatePosition(ctx context.Context, index game.TurtleIndex, world string, pos game.Pos3) error {
	return s.updateField(ctx, index, world, "position", pos.StringRepr())
}

func (s *Store) UpdateOrientation(ctx context.Context, index game.TurtleIndex, world string, o game.Orientation) error {
	return s.updateField(ctx, index, world, "orientation", string(o))
}

func (s *Store) UpdateFuel(ctx context.Context, index game.TurtleIndex, world string, fuel int32) error {
	return s.updateField(ctx, index, world, "fuel", fuel)
}

func (s *Store) UpdateMaxFuel(ctx context.Context, index game.TurtleIndex, world string, maxFuel int32) error {
	return s.updateField(ctx, index, world, "max_fuel", maxFuel)
}

func (s *Store) UpdateName(ctx context.Context, index game.TurtleIndex, world string, name string) error {
	return s.updateField(ctx, index, world, "name", name)
}

func (s *Store) UpdateInventory(ctx context.Context, index game.TurtleIndex, world string, inv game.Inventory) error {
	encoded, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("encode inventory: %w", err)
	}
	return s.updateField(ctx, index, world, "inventory", string(encoded))
}

// UpdateWorld moves a turtle row to another world, creating the destination
// world on demand.
func (s *Store) UpdateWorld(ctx context.Context, index game.TurtleIndex, oldWorld, newWorld string) error {
	if err := s.EnsureWorld(ctx, newWorld); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE turtles SET world = ? WHERE id = ? AND world = ?;`, newWorld, index, oldWorld)
	return err
}

func (s *Store) updateField(ctx context.Context, index game.TurtleIndex, world, column string, value any) error {
	// column is always one of the fixed names above, never caller input.
	query := fmt.Sprintf(`UPDATE turtles SET %s = ? WHERE id = ? AND world = ?;`, column)
	_, err := s.db.ExecContext(ctx, query, value, index, world)
	return err
}

// SetBlock upserts one block observation keyed by (world, world_pos).
func (s *Store) SetBlock(ctx context.Context, b game.Block) error {
	key := game.ChunkKey(game.ChunkContaining(b.Pos))
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO blocks (chunk_key, id, world, world_pos, is_air)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (world, world_pos) DO UPDATE SET
			chunk_key = excluded.chunk_key,
			id = excluded.id,
			is_air = excluded.is_air;`,
		key, b.ID, b.World, b.Pos.StringRepr(), b.IsAir)
	return err
}

// GetWorld assembles the full block snapshot of a world.
func (s *Store) GetWorld(ctx context.Context, name string) (*game.World, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, world_pos, is_air FROM blocks WHERE world = ?;`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	world := game.NewWorld(name)
	for rows.Next() {
		var (
			id     string
			posStr string
			isAir  bool
		)
		if err := rows.Scan(&id, &posStr, &isAir); err != nil {
			return nil, err
		}
		pos, err := game.ParsePos3(posStr)
		if err != nil {
			return nil, err
		}
		world.SetBlock(game.Block{World: name, ID: id, Pos: pos, IsAir: isAir})
	}
	return world, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTurtle(row rowScanner) (game.Turtle, error) {
	var (
		t           game.Turtle
		inventory   string
		position    string
		orientation string
	)
	if err := row.Scan(&t.Index, &t.Name, &inventory, &position, &orientation,
		&t.Fuel, &t.MaxFuel, &t.World); err != nil {
		return game.Turtle{}, err
	}
	if err := json.Unmarshal([]byte(inventory), &t.Inventory); err != nil {
		return game.Turtle{}, fmt.Errorf("decode inventory: %w", err)
	}
	pos, err := game.ParsePos3(position)
	if err != nil {
		return game.Turtle{}, err
	}
	t.Position = pos
	facing, err := game.ParseOrientation(orientation)
	if err != nil {
		return game.Turtle{}, err
	}
	t.Orientation = facing
	return t, nil
}
