package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"smriti/logging"
	"smriti/model"

	"github.com/mattn/go-sqlite3"
)

// FileName is the store's file name inside the user's home directory.
const FileName = ".smriti.db"

var (
	ErrNotFound           = errors.New("no command found")
	ErrDuplicate          = errors.New("already exists")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrUnknownField       = errors.New("unknown field")
)

// DuplicateError reports a unique constraint violation on Field.
type DuplicateError struct {
	Field string
	Value string
}

func (e *DuplicateError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s already exists", e.Field)
	}
	return fmt.Sprintf("%s %q already exists", e.Field, e.Value)
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

type DB struct {
	conn *sql.DB
}

// New opens the store at its fixed location in the user's home directory.
func New() (*DB, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return Open(path)
}

func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, FileName), nil
}

// Open opens (creating if needed) the store at path. Every failure is
// reported as ErrStorageUnavailable.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	conn, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	// One CLI invocation, one connection.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	logging.Debug().Str("path", path).Msg("store opened")
	return db, nil
}

func (d *DB) migrate() error {
	_, err := d.conn.Exec(`
		CREATE TABLE IF NOT EXISTS commands (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			command TEXT NOT NULL UNIQUE,
			alias TEXT NOT NULL UNIQUE,
			info TEXT NOT NULL DEFAULT '',
			service TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_commands_service ON commands(service);
	`)
	return err
}

func (d *DB) Close() error {
	if d.conn == nil {
		return nil
	}
	return d.conn.Close()
}

func (d *DB) Insert(command, alias, info, service string) (*model.Command, error) {
	result, err := d.conn.Exec(
		`INSERT INTO commands (command, alias, info, service) VALUES (?, ?, ?, ?)`,
		command, alias, info, service,
	)
	if err != nil {
		return nil, translate(err, map[string]string{"command": command, "alias": alias})
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	logging.Debug().Int64("id", id).Str("alias", alias).Msg("command inserted")

	return &model.Command{ID: id, Command: command, Alias: alias, Info: info, Service: service}, nil
}

// CommandText returns only the command template stored under alias.
func (d *DB) CommandText(alias string) (string, error) {
	var command string
	err := d.conn.QueryRow(`SELECT command FROM commands WHERE alias = ?`, alias).Scan(&command)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w with alias %q", ErrNotFound, alias)
	}
	if err != nil {
		return "", err
	}
	return command, nil
}

func (d *DB) Get(alias string) (*model.Command, error) {
	row := d.conn.QueryRow(`SELECT id, command, alias, info, service FROM commands WHERE alias = ?`, alias)
	c, err := scanCommand(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w with alias %q", ErrNotFound, alias)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (d *DB) List() ([]model.Command, error) {
	return d.queryCommands(`SELECT id, command, alias, info, service FROM commands ORDER BY id`)
}

// FindByService returns every command tagged with service, possibly none.
func (d *DB) FindByService(service string) ([]model.Command, error) {
	return d.queryCommands(`SELECT id, command, alias, info, service FROM commands WHERE service = ? ORDER BY id`, service)
}

func (d *DB) Count() (int, error) {
	var n int
	err := d.conn.QueryRow(`SELECT COUNT(*) FROM commands`).Scan(&n)
	return n, err
}

func (d *DB) DeleteByAlias(alias string) error {
	result, err := d.conn.Exec(`DELETE FROM commands WHERE alias = ?`, alias)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w with alias %q", ErrNotFound, alias)
	}
	logging.Debug().Str("alias", alias).Msg("command deleted")
	return nil
}

// DeleteByService removes every command tagged with service and reports how
// many were removed. Removing nothing is not an error.
func (d *DB) DeleteByService(service string) (int64, error) {
	result, err := d.conn.Exec(`DELETE FROM commands WHERE service = ?`, service)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	logging.Debug().Str("service", service).Int64("deleted", n).Msg("service deleted")
	return n, nil
}

// UpdateField sets a single mutable column of the command stored under alias.
func (d *DB) UpdateField(alias string, f Mutable, value string) error {
	stmt, ok := updateStatements[f]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownField, f)
	}

	result, err := d.conn.Exec(stmt, value, alias)
	if err != nil {
		return translate(err, map[string]string{f.String(): value})
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w with alias %q", ErrNotFound, alias)
	}
	logging.Debug().Str("alias", alias).Stringer("field", f).Msg("command updated")
	return nil
}

// RenameAlias moves the command stored under oldAlias to newAlias, keeping
// its id and every other column.
func (d *DB) RenameAlias(oldAlias, newAlias string) error {
	result, err := d.conn.Exec(`UPDATE commands SET alias = ? WHERE alias = ?`, newAlias, oldAlias)
	if err != nil {
		return translate(err, map[string]string{"alias": newAlias})
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w with alias %q", ErrNotFound, oldAlias)
	}
	logging.Debug().Str("from", oldAlias).Str("to", newAlias).Msg("alias renamed")
	return nil
}

func (d *DB) queryCommands(query string, args ...any) ([]model.Command, error) {
	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	commands := []model.Command{}
	for rows.Next() {
		c, err := scanCommand(rows)
		if err != nil {
			return nil, err
		}
		commands = append(commands, c)
	}
	return commands, rows.Err()
}

// scanCommand scans a command from a sql.Row or sql.Rows.
func scanCommand(s interface{ Scan(...any) error }) (model.Command, error) {
	var c model.Command
	err := s.Scan(&c.ID, &c.Command, &c.Alias, &c.Info, &c.Service)
	return c, err
}

// translate turns a unique constraint violation into a DuplicateError naming
// the offending column. values maps column names to the values just written.
func translate(err error, values map[string]string) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.ExtendedCode != sqlite3.ErrConstraintUnique {
		return err
	}

	// "UNIQUE constraint failed: commands.alias"
	field := "record"
	if i := strings.LastIndex(sqliteErr.Error(), "commands."); i >= 0 {
		field = sqliteErr.Error()[i+len("commands."):]
	}
	return &DuplicateError{Field: field, Value: values[field]}
}
