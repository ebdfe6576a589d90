package common

import (
	"errors"

	"github.com/lib/pq"
)

// UniqueViolation возвращает имя нарушенного constraint, если ошибка —
// нарушение уникальности PostgreSQL (код 23505). Репозитории по имени
// constraint решают, какое именно поле столкнулось.
func UniqueViolation(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return pqErr.Constraint, true
	}
	return "", false
}
