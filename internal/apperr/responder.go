package apperr

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContentTypeProblemJSON is the media type for RFC 7807 problem responses.
const ContentTypeProblemJSON = "application/problem+json"

// Problem is an RFC 7807 problem details body.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// Status maps an error kind to its HTTP status.
func Status(err error) int {
	switch KindOf(err) {
	case KindSerialization, KindInvalidInput:
		return http.StatusBadRequest
	case KindPermissionDenied:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func problemType(k Kind) string {
	switch k {
	case KindInitialization:
		return "/problems/initialization-error"
	case KindConnection:
		return "/problems/connection-error"
	case KindSerialization:
		return "/problems/serialization-error"
	case KindPermissionDenied:
		return "/problems/forbidden"
	case KindNotFound:
		return "/problems/not-found"
	case KindInvalidInput:
		return "/problems/validation-error"
	default:
		return "/problems/internal-error"
	}
}

func newProblem(status int, err error, instance string) Problem {
	p := Problem{
		Type:     problemType(KindOf(err)),
		Title:    http.StatusText(status),
		Status:   status,
		Instance: instance,
	}
	if err != nil {
		p.Detail = err.Error()
	}
	return p
}

// Respond writes err as a problem response and aborts the gin chain.
func Respond(c *gin.Context, err error) {
	status := Status(err)
	RespondStatus(c, status, err)
}

// RespondStatus is Respond with an explicit status, for adapters that
// override the default mapping (e.g. 401 for a missing session).
func RespondStatus(c *gin.Context, status int, err error) {
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.AbortWithStatusJSON(status, newProblem(status, err, c.Request.URL.Path))
}

// WriteProblem is RespondStatus for plain net/http handlers.
func WriteProblem(w http.ResponseWriter, r *http.Request, status int, err error) {
	w.Header().Set("Content-Type", ContentTypeProblemJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(newProblem(status, err, r.URL.Path))
}
