package sqlite

import (
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// Stores bundles the SQLite store implementations sharing one database.
type Stores struct {
	DB            *sqlx.DB
	Users         *UserStore
	Tasks         *TaskStore
	Comments      *CommentStore
	Notifications *NotificationStore
}

// NewStores creates every store on db.
func NewStores(db *sqlx.DB, logger *slog.Logger) *Stores {
	return &Stores{
		DB:            db,
		Users:         NewUserStore(db, logger),
		Tasks:         NewTaskStore(db, logger),
		Comments:      NewCommentStore(db, logger),
		Notifications: NewNotificationStore(db, logger),
	}
}
