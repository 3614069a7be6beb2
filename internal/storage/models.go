package storage

import "github.com/google/uuid"

// Record - одна строка журнала раунда: ставка участника против
// фактической стоимости каскета. Неизменяема после записи.
type Record struct {
	RoundID uuid.UUID
	Date    string
	Time    string
	Name    string
	Guess   int64
	Casket  int64
	Win     bool
}
