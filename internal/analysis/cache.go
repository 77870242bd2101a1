package analysis

import "sync/atomic"

// Cache хранит не более одного результата - последний анализ текущего мира.
// Запись заменяет значение целиком, читатель никогда не видит частичный агрегат.
type Cache struct {
	current atomic.Pointer[Result]
}

// NewCache создаёт пустой кеш
func NewCache() *Cache {
	return &Cache{}
}

// Set безусловно заменяет результат
func (c *Cache) Set(r *Result) {
	c.current.Store(r)
}

// Get возвращает результат или false, если анализа ещё не было
func (c *Cache) Get() (*Result, bool) {
	r := c.current.Load()
	return r, r != nil
}
