package db

import "context"

const userColumns = `id, username, email, password_hash, is_staff, created_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsStaff, &u.CreatedAt)
	return u, err
}

func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

type CreateUserParams struct {
	Username     string
	Email        string
	PasswordHash string
	IsStaff      bool
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash, is_staff)
		VALUES (?, ?, ?, ?)
		RETURNING id`,
		arg.Username, arg.Email, arg.PasswordHash, arg.IsStaff,
	).Scan(&id)
	if err != nil {
		return User{}, err
	}
	return q.GetUserByID(ctx, id)
}
