package policies

import (
	"github.com/pbrandao/blogo/internal/db"
	"github.com/pbrandao/blogo/internal/identity"
)

// CanModifyPost decide se o ator pode alterar ou remover o post.
// Função pura e total: anônimo nunca pode; staff pode tudo; fora isso,
// apenas o dono. Post órfão (autor NULL) só é editável por staff.
func CanModifyPost(actor identity.Identity, post db.Post) bool {
	if !actor.Authenticated {
		return false
	}
	if actor.IsStaff {
		return true
	}
	return post.AuthorUsername.Valid && actor.Username == post.AuthorUsername.String
}
