package save

import (
	"context"
	"errors"
)

// ErrSaveNotFound возвращается, когда именованное сохранение отсутствует
var ErrSaveNotFound = errors.New("save not found")

// Source поставляет полный список кирпичей текущего мира.
// Список может быть очень большим; вызывающий владеет им только на время одного анализа.
type Source interface {
	Bricks(ctx context.Context) ([]Brick, error)
}

// MemorySource отдаёт заранее известный список кирпичей
type MemorySource struct {
	bricks []Brick
}

// NewMemorySource создаёт источник поверх готового списка
func NewMemorySource(bricks []Brick) *MemorySource {
	return &MemorySource{bricks: bricks}
}

// Bricks возвращает список кирпичей
func (m *MemorySource) Bricks(ctx context.Context) ([]Brick, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.bricks, nil
}

// Replace подменяет список (имитация правки мира между анализами)
func (m *MemorySource) Replace(bricks []Brick) {
	m.bricks = bricks
}
