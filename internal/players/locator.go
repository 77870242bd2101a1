// Package players отвечает на вопрос "где сейчас стоит игрок".
package players

import (
	"context"
	"errors"
	"strings"

	"github.com/annel0/chunk-inspector/internal/vec"
)

// ErrNoSuchPlayer возвращается, когда позиция игрока неизвестна
var ErrNoSuchPlayer = errors.New("no such player")

// Locator - API хоста для получения позиции игрока
type Locator interface {
	// Position возвращает позицию игрока или ErrNoSuchPlayer.
	Position(ctx context.Context, player string) (vec.Vec3Float, error)
}

// normalize приводит имя игрока к ключу: имена в чате регистронезависимы
func normalize(player string) string {
	return strings.ToLower(strings.TrimSpace(player))
}
