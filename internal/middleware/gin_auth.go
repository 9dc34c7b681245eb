package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fluxynet/blog/internal/auth"
)

// GinRequireAuth adapts the net/http AuthMiddleware to Gin.
func GinRequireAuth(a *AuthMiddleware) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Bridge handler to allow net/http middleware execution
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Request = r
			c.Next()
		})

		a.RequireAuth(next).ServeHTTP(c.Writer, c.Request)

		// If auth middleware already handled the response, stop Gin chain
		if c.Writer.Written() {
			c.Abort()
			return
		}
	}
}

// CurrentUser returns the user GinRequireAuth attached to the request.
func CurrentUser(c *gin.Context) (auth.User, bool) {
	return UserFromContext(c.Request.Context())
}
