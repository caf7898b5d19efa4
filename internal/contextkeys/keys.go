package contextkeys

type contextKey string

const UserContextKey contextKey = "user"
const CSRFTokenKey contextKey = "csrf_token"
