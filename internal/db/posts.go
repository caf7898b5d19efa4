package db

import (
	"context"
	"time"
)

const postColumns = `p.id, p.author_id, u.username, p.title, p.content, p.date_posted, p.date_updated`

func scanPost(row interface{ Scan(...any) error }) (Post, error) {
	var p Post
	err := row.Scan(
		&p.ID,
		&p.AuthorID,
		&p.AuthorUsername,
		&p.Title,
		&p.Content,
		&p.DatePosted,
		&p.DateUpdated,
	)
	return p, err
}

func (q *Queries) GetPostByID(ctx context.Context, id int64) (Post, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+postColumns+`
		FROM posts p
		LEFT JOIN users u ON u.id = p.author_id
		WHERE p.id = ?`, id)
	return scanPost(row)
}

// ListPosts retorna posts ordenados pelo último update (mais recente primeiro).
func (q *Queries) ListPosts(ctx context.Context, limit, offset int64) ([]Post, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+postColumns+`
		FROM posts p
		LEFT JOIN users u ON u.id = p.author_id
		ORDER BY p.date_updated DESC, p.id DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (q *Queries) ListPostsByAuthor(ctx context.Context, authorID int64) ([]Post, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+postColumns+`
		FROM posts p
		LEFT JOIN users u ON u.id = p.author_id
		WHERE p.author_id = ?
		ORDER BY p.date_updated DESC, p.id DESC`, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (q *Queries) CountPosts(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&count)
	return count, err
}

type InsertPostParams struct {
	AuthorID    int64
	Title       string
	Content     string
	DatePosted  time.Time
	DateUpdated time.Time
}

func (q *Queries) InsertPost(ctx context.Context, arg InsertPostParams) (Post, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO posts (author_id, title, content, date_posted, date_updated)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`,
		arg.AuthorID, arg.Title, arg.Content, arg.DatePosted, arg.DateUpdated,
	).Scan(&id)
	if err != nil {
		return Post{}, err
	}
	return q.GetPostByID(ctx, id)
}

type UpdatePostParams struct {
	ID          int64
	Title       string
	Content     string
	DateUpdated time.Time
}

func (q *Queries) UpdatePost(ctx context.Context, arg UpdatePostParams) (Post, error) {
	_, err := q.db.ExecContext(ctx, `
		UPDATE posts SET title = ?, content = ?, date_updated = ?
		WHERE id = ?`,
		arg.Title, arg.Content, arg.DateUpdated, arg.ID)
	if err != nil {
		return Post{}, err
	}
	return q.GetPostByID(ctx, arg.ID)
}

// DeletePost remove o post definitivamente. Retorna o número de linhas
// afetadas para que o chamador distinga "já não existia".
func (q *Queries) DeletePost(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
