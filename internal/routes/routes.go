package routes

import "strconv"

const (
	Home     = "/"
	About    = "/about"
	Login    = "/login"
	Logout   = "/logout"
	Register = "/register"
	PostNew  = "/post/new"
	Health   = "/health"
	Metrics  = "/metrics"
)

// Padrões de rota para o ServeMux (Go 1.22+).
const (
	UserPostsPattern  = "/user/{username}"
	PostDetailPattern = "/post/{id}"
	PostUpdatePattern = "/post/{id}/update"
	PostDeletePattern = "/post/{id}/delete"
)

func UserPosts(username string) string {
	return "/user/" + username
}

func PostDetail(id int64) string {
	return "/post/" + strconv.FormatInt(id, 10)
}

func PostUpdate(id int64) string {
	return PostDetail(id) + "/update"
}

func PostDelete(id int64) string {
	return PostDetail(id) + "/delete"
}
