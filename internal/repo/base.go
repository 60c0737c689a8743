package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base is embedded by the domain repositories and hands out a
// context-bound gorm handle.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB binds ctx to the connection so cancellation and deadlines propagate
// into queries.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}
