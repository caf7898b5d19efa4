package db

import (
	"database/sql"
	"time"
)

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	IsStaff      bool
	CreatedAt    time.Time
}

// Post é o registro persistido. AuthorID é uma referência fraca: quando o
// autor é removido, o post permanece com autor nulo (órfão).
type Post struct {
	ID             int64
	AuthorID       sql.NullInt64
	AuthorUsername sql.NullString
	Title          string
	Content        string
	DatePosted     time.Time
	DateUpdated    time.Time
}
