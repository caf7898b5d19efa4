// Package posts implementa o ciclo de vida do Post: listagem pública,
// criação autenticada e mutações protegidas pela política dono-ou-staff.
package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pbrandao/blogo/internal/db"
	"github.com/pbrandao/blogo/internal/identity"
	"github.com/pbrandao/blogo/internal/logging"
	"github.com/pbrandao/blogo/internal/metrics"
	"github.com/pbrandao/blogo/internal/policies"
	"github.com/pbrandao/blogo/internal/validator"
)

// ReadStore e WriteStore separam as capacidades exigidas do armazenamento.
// *db.Queries satisfaz ambas; em produção cada uma vem de um pool distinto.
type ReadStore interface {
	GetPostByID(ctx context.Context, id int64) (db.Post, error)
	ListPosts(ctx context.Context, limit, offset int64) ([]db.Post, error)
	ListPostsByAuthor(ctx context.Context, authorID int64) ([]db.Post, error)
	CountPosts(ctx context.Context) (int64, error)
	GetUserByUsername(ctx context.Context, username string) (db.User, error)
}

type WriteStore interface {
	InsertPost(ctx context.Context, arg db.InsertPostParams) (db.Post, error)
	UpdatePost(ctx context.Context, arg db.UpdatePostParams) (db.Post, error)
	DeletePost(ctx context.Context, id int64) (int64, error)
}

type Service struct {
	reads  ReadStore
	writes WriteStore
	now    func() time.Time
}

type Option func(*Service)

// WithClock troca a fonte de tempo. Usado nos testes para fixar timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(reads ReadStore, writes WriteStore, opts ...Option) *Service {
	s := &Service{
		reads:  reads,
		writes: writes,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List retorna uma página de posts, do atualizado mais recentemente para o
// mais antigo. Leitura pública, sem checagem de política.
func (s *Service) List(ctx context.Context, paging db.PagingParams) (db.PagedResult[db.Post], error) {
	items, err := s.reads.ListPosts(ctx, int64(paging.Limit()), int64(paging.Offset()))
	if err != nil {
		return db.PagedResult[db.Post]{}, fmt.Errorf("failed to list posts: %w", err)
	}

	total, err := s.reads.CountPosts(ctx)
	if err != nil {
		return db.PagedResult[db.Post]{}, fmt.Errorf("failed to count posts: %w", err)
	}

	if paging.Page < 1 {
		paging.Page = 1
	}
	return db.PagedResult[db.Post]{
		Items:       items,
		TotalItems:  int(total),
		CurrentPage: paging.Page,
		PerPage:     paging.Limit(),
	}, nil
}

// ListByAuthor retorna o autor e todos os seus posts. Falha com ErrNotFound
// quando o username não existe, mesmo que a lista fosse simplesmente vazia.
func (s *Service) ListByAuthor(ctx context.Context, username string) (db.User, []db.Post, error) {
	author, err := s.reads.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return db.User{}, nil, ErrNotFound
		}
		return db.User{}, nil, fmt.Errorf("failed to look up author: %w", err)
	}

	items, err := s.reads.ListPostsByAuthor(ctx, author.ID)
	if err != nil {
		return db.User{}, nil, fmt.Errorf("failed to list posts by author: %w", err)
	}
	return author, items, nil
}

// Get busca por chave primária. Leituras são públicas.
func (s *Service) Get(ctx context.Context, id int64) (db.Post, error) {
	post, err := s.reads.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return db.Post{}, ErrNotFound
		}
		return db.Post{}, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// Create exige ator autenticado e vincula o post a ele.
// date_posted == date_updated na criação.
func (s *Service) Create(ctx context.Context, actor identity.Identity, title, content string) (db.Post, error) {
	if !actor.Authenticated {
		return db.Post{}, ErrUnauthorized
	}

	if result := validator.ValidatePost(title, content); !result.Valid {
		return db.Post{}, &ValidationError{Result: result}
	}

	now := s.now()
	post, err := s.writes.InsertPost(ctx, db.InsertPostParams{
		AuthorID:    actor.UserID,
		Title:       strings.TrimSpace(title),
		Content:     strings.TrimSpace(content),
		DatePosted:  now,
		DateUpdated: now,
	})
	if err != nil {
		return db.Post{}, fmt.Errorf("failed to insert post: %w", err)
	}

	metrics.PostsCreated.Inc()
	logging.AddToEvent(ctx,
		slog.String("operation", "post_create"),
		slog.Int64("post_id", post.ID),
		slog.String("author", actor.Username),
	)
	return post, nil
}

// Update busca, aplica a política e só então valida e persiste, avançando
// date_updated. Escritas concorrentes no mesmo id não são serializadas:
// a última a chegar no banco vence.
func (s *Service) Update(ctx context.Context, actor identity.Identity, id int64, title, content string) (db.Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return db.Post{}, err
	}

	if !policies.CanModifyPost(actor, post) {
		metrics.MutationsDenied.WithLabelValues("update").Inc()
		if !actor.Authenticated {
			return db.Post{}, ErrUnauthorized
		}
		return db.Post{}, ErrForbidden
	}

	if result := validator.ValidatePost(title, content); !result.Valid {
		return db.Post{}, &ValidationError{Result: result}
	}

	updated, err := s.writes.UpdatePost(ctx, db.UpdatePostParams{
		ID:          id,
		Title:       strings.TrimSpace(title),
		Content:     strings.TrimSpace(content),
		DateUpdated: s.now(),
	})
	if err != nil {
		return db.Post{}, fmt.Errorf("failed to update post: %w", err)
	}

	metrics.PostsUpdated.Inc()
	logging.AddToEvent(ctx,
		slog.String("operation", "post_update"),
		slog.Int64("post_id", id),
		slog.String("actor", actor.Username),
	)
	return updated, nil
}

// Delete remove o post definitivamente. Depois disso o id falha com
// ErrNotFound em qualquer operação.
func (s *Service) Delete(ctx context.Context, actor identity.Identity, id int64) error {
	post, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if !policies.CanModifyPost(actor, post) {
		metrics.MutationsDenied.WithLabelValues("delete").Inc()
		if !actor.Authenticated {
			return ErrUnauthorized
		}
		return ErrForbidden
	}

	affected, err := s.writes.DeletePost(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if affected == 0 {
		// Corrida com outro delete: alguém chegou primeiro.
		return ErrNotFound
	}

	metrics.PostsDeleted.Inc()
	logging.AddToEvent(ctx,
		slog.String("operation", "post_delete"),
		slog.Int64("post_id", id),
		slog.String("actor", actor.Username),
	)
	return nil
}
