package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Storage struct {
	db *pgxpool.Pool
}

// New - Создание подключения
func New(dsn string) (*Storage, error) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}
	return &Storage{db: pool}, nil
}

// Ping - проверка подключения к DB
func (s *Storage) Ping() error {
	return s.db.Ping(context.Background())
}

// EnsureSchema создает таблицу журнала, если ее еще нет
func (s *Storage) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS guesses (
			id         BIGSERIAL PRIMARY KEY,
			round_id   UUID NOT NULL,
			date       TEXT NOT NULL,
			time       TEXT NOT NULL,
			name       TEXT NOT NULL,
			guess      BIGINT NOT NULL,
			casket     BIGINT NOT NULL,
			win        BOOLEAN NOT NULL
		)`)
	return err
}

// Append - Сохранение записей раунда одним батчем
func (s *Storage) Append(ctx context.Context, records []Record) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, r := range records {
		_, err := tx.Exec(ctx,
			`INSERT INTO guesses (round_id, date, time, name, guess, casket, win)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			r.RoundID, r.Date, r.Time, r.Name, r.Guess, r.Casket, r.Win,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// ScanAll - Получение всего журнала, по нему пересобирается счет побед
func (s *Storage) ScanAll(ctx context.Context) ([]Record, error) {
	rows, err := s.db.Query(ctx,
		`SELECT round_id, date, time, name, guess, casket, win FROM guesses ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.RoundID, &r.Date, &r.Time, &r.Name, &r.Guess, &r.Casket, &r.Win); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
