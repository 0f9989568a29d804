package application

import (
	"context"
	"database/sql"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
)

// MigrationManager applies the embedded goose migrations against the
// configured database.
type MigrationManager interface {
	RegisterSchema(fsys fs.FS, dir string)
	Up(ctx context.Context) error
	Down(ctx context.Context) error
}

func NewMigrationManager(dbOpts string, logger *logrus.Logger) MigrationManager {
	return &migrationManager{dbOpts: dbOpts, logger: logger}
}

type migrationManager struct {
	dbOpts string
	logger *logrus.Logger
	fsys   fs.FS
	dir    string
}

func (m *migrationManager) RegisterSchema(fsys fs.FS, dir string) {
	m.fsys = fsys
	m.dir = dir
}

func (m *migrationManager) Up(ctx context.Context) error {
	return m.run(ctx, func(db *sql.DB) error {
		return goose.UpContext(ctx, db, m.dir)
	})
}

func (m *migrationManager) Down(ctx context.Context) error {
	return m.run(ctx, func(db *sql.DB) error {
		return goose.DownContext(ctx, db, m.dir)
	})
}

func (m *migrationManager) run(ctx context.Context, fn func(db *sql.DB) error) error {
	if m.fsys == nil {
		return nil
	}
	goose.SetBaseFS(m.fsys)
	defer goose.SetBaseFS(nil)
	if m.logger != nil {
		goose.SetLogger(m.logger)
	}
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	db, err := sql.Open("pgx", m.dbOpts)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()
	return fn(db)
}
