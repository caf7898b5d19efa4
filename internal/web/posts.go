package web

import (
	"net/http"
	"strconv"

	"github.com/pbrandao/blogo/internal/db"
	"github.com/pbrandao/blogo/internal/middleware"
	"github.com/pbrandao/blogo/internal/policies"
	"github.com/pbrandao/blogo/internal/posts"
	"github.com/pbrandao/blogo/internal/routes"
	"github.com/pbrandao/blogo/internal/view"
)

func postID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		// Id malformado é indistinguível de inexistente para o visitante.
		return 0, posts.ErrNotFound
	}
	return id, nil
}

func handleHome(deps HandlerDeps, w http.ResponseWriter, r *http.Request) error {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	result, err := deps.Posts.List(r.Context(), db.PagingParams{
		Page:    page,
		PerPage: deps.Config.PostsPerPage,
	})
	if err != nil {
		return err
	}

	pagination := view.NewPagination(result.CurrentPage, result.TotalItems, result.PerPage)
	return deps.render(w, r, http.StatusOK, "home", &view.PageData{
		Title:      "Home",
		Posts:      result.Items,
		Pagination: &pagination,
	})
}

func handleAbout(deps HandlerDeps, w http.ResponseWriter, r *http.Request) error {
	return deps.render(w, r, http.StatusOK, "about", &view.PageData{Title: "Sobre"})
}

func handleUserPosts(deps HandlerDeps, w http.ResponseWriter, r *http.Request) error {
	username := r.PathValue("username")

	author, items, err := deps.Posts.ListByAuthor(r.Context(), username)
	if err != nil {
		return err
	}

	return deps.render(w, r, http.StatusOK, "user_posts", &view.PageData{
		Title:  "Posts de " + author.Username,
		Author: &author,
		Posts:  items,
	})
}

func handlePostDetail(deps HandlerDeps, w http.ResponseWriter, r *http.Request) error {
	id, err := postID(r)
	if err != nil {
		return err
	}

	post, err := deps.Posts.Get(r.Context(), id)
	if err != nil {
		return err
	}

	actor := middleware.CurrentIdentity(r.Context())
	return deps.render(w, r, http.StatusOK, "post_detail", &view.PageData{
		Title:     post.Title,
		Post:      &post,
		PostHTML:  deps.Markdown.Render(post),
		CanModify: policies.CanModifyPost(actor, post),
	})
}

func handlePostNewForm(deps HandlerDeps, w http.ResponseWriter, r *http.Request) error {
	return deps.render(w, r, http.StatusOK, "post_form", &view.PageData{
		Title:    "Novo post",
		FormData: map[string]string{},
	})
}

func handlePostCreate(deps HandlerDeps, w http.ResponseWriter, r *http.Request) error {
	title := r.FormValue("title")
	content := r.FormValue("content")

	actor := middleware.CurrentIdentity(r.Context())
	post, err := deps.Posts.Create(r.Context(), actor, title, content)
	if err != nil {
		if ve, ok := posts.AsValidationError(err); ok {
			return deps.render(w, r, http.StatusOK, "post_form", &view.PageData{
				Title:     "Novo post",
				FormError: ve.Result.Message(),
				FormData:  map[string]string{"title": title, "content": content},
			})
		}
		return err
	}

	http.Redirect(w, r, routes.PostDetail(post.ID), http.StatusSeeOther)
	return nil
}

func handlePostUpdateForm(deps HandlerDeps, w http.ResponseWriter, r *http.Request) error {
	id, err := postID(r)
	if err != nil {
		return err
	}

	post, err := deps.Posts.Get(r.Context(), id)
	if err != nil {
		return err
	}

	actor := middleware.CurrentIdentity(r.Context())
	if !policies.CanModifyPost(actor, post) {
		if !actor.Authenticated {
			return posts.ErrUnauthorized
		}
		return posts.ErrForbidden
	}

	return deps.render(w, r, http.StatusOK, "post_form", &view.PageData{
		Title:    "Editar post",
		Post:     &post,
		FormData: map[string]string{"title": post.Title, "content": post.Content},
	})
}

func handlePostUpdate(deps HandlerDeps, w http.ResponseWriter, r *http.Request) error {
	id, err := postID(r)
	if err != nil {
		return err
	}

	title := r.FormValue("title")
	content := r.FormValue("content")

	actor := middleware.CurrentIdentity(r.Context())
	post, err := deps.Posts.Update(r.Context(), actor, id, title, content)
	if err != nil {
		if ve, ok := posts.AsValidationError(err); ok {
			return deps.render(w, r, http.StatusOK, "post_form", &view.PageData{
				Title:     "Editar post",
				FormError: ve.Result.Message(),
				FormData:  map[string]string{"title": title, "content": content},
			})
		}
		return err
	}

	http.Redirect(w, r, routes.PostDetail(post.ID), http.StatusSeeOther)
	return nil
}

func handlePostDelete(deps HandlerDeps, w http.ResponseWriter, r *http.Request) error {
	id, err := postID(r)
	if err != nil {
		return err
	}

	actor := middleware.CurrentIdentity(r.Context())
	if err := deps.Posts.Delete(r.Context(), actor, id); err != nil {
		return err
	}

	deps.flash(r, "Post excluído do banco de dados")
	http.Redirect(w, r, routes.Home, http.StatusSeeOther)
	return nil
}
