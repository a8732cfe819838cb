package db

import (
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	"github.com/marcus-crane/mediabridge/migrations"
	"github.com/marcus-crane/mediabridge/models"

	_ "modernc.org/sqlite"
)

type SqliteStore struct {
	DB *sqlx.DB
}

func NewSqliteStore(dsn string) (*SqliteStore, error) {
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// An in-memory database lives and dies with its connection.
	db.SetMaxOpenConns(1)
	return &SqliteStore{
		DB: db,
	}, nil
}

func (s *SqliteStore) ApplyMigrations() error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(string(goose.DialectSQLite3)); err != nil {
		return err
	}

	if err := goose.Up(s.DB.DB, migrations.Dir); err != nil {
		return err
	}

	return nil
}

func (s *SqliteStore) InsertSample(sample models.SystemSample) (int64, error) {
	res, err := s.DB.NamedExec(`
	  INSERT INTO system_samples
	  (sampled_at, hostname, cpu_usage, memory_total, memory_free, disk_total, disk_free, avg_load, proc_total, payload)
	  VALUES (:sampled_at, :hostname, :cpu_usage, :memory_total, :memory_free, :disk_total, :disk_free, :avg_load, :proc_total, :payload)`,
		sample)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *SqliteStore) RecentSamples(limit int) ([]models.SystemSample, error) {
	samples := []models.SystemSample{}
	if err := s.DB.Select(&samples, "SELECT id, sampled_at, hostname, cpu_usage, memory_total, memory_free, disk_total, disk_free, avg_load, proc_total, payload FROM system_samples ORDER BY sampled_at DESC, id DESC LIMIT ?", limit); err != nil {
		return samples, err
	}
	return samples, nil
}

func (s *SqliteStore) PruneSamples(before int64) (int64, error) {
	res, err := s.DB.Exec("DELETE FROM system_samples WHERE sampled_at < ?", before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SqliteStore) Close() error {
	return s.DB.Close()
}
