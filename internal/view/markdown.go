package view

import (
	"fmt"
	"html/template"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"

	"github.com/pbrandao/blogo/internal/db"
)

// Markdown converte o conteúdo de um post em HTML sanitizado. O resultado é
// cacheado por (id, date_updated): um update invalida a entrada naturalmente
// porque a chave muda.
type Markdown struct {
	cache  *lru.Cache[string, template.HTML]
	policy *bluemonday.Policy
}

func NewMarkdown(cacheSize int) (*Markdown, error) {
	cache, err := lru.New[string, template.HTML](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to build markdown cache: %w", err)
	}
	return &Markdown{
		cache:  cache,
		policy: bluemonday.UGCPolicy(),
	}, nil
}

func (m *Markdown) Render(post db.Post) template.HTML {
	key := fmt.Sprintf("%d:%d", post.ID, post.DateUpdated.UnixNano())
	if html, ok := m.cache.Get(key); ok {
		return html
	}

	raw := blackfriday.Run([]byte(post.Content))
	html := template.HTML(m.policy.SanitizeBytes(raw))

	m.cache.Add(key, html)
	return html
}
