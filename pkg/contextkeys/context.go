package contextkeys

type contextKey string

// DBContextKey stores the request-scoped *gorm.DB in the gin context.
const DBContextKey = contextKey("db")

// UserIDKey and RoleKey hold the authenticated principal.
const (
	UserIDKey = contextKey("userID")
	RoleKey   = contextKey("role")
)
