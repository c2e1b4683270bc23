package middleware

import (
	"os"
	"strconv"
	"sync"
	"time"

	"document-entry-api/utils"

	"github.com/gin-gonic/gin"
)

type clientWindow struct {
	count   int
	resetAt time.Time
}

// RateLimitMiddleware rejects clients exceeding RATE_LIMIT_PER_MINUTE
// requests in a one-minute window. A missing or zero limit disables the
// middleware entirely. Rejections are never retried by the server side;
// the client gets a 429 and decides for itself.
func RateLimitMiddleware() gin.HandlerFunc {
	limit, _ := strconv.Atoi(os.Getenv("RATE_LIMIT_PER_MINUTE"))
	if limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	var mu sync.Mutex
	windows := make(map[string]*clientWindow)

	return func(c *gin.Context) {
		now := time.Now()
		key := c.ClientIP()

		mu.Lock()
		w, ok := windows[key]
		if !ok || now.After(w.resetAt) {
			w = &clientWindow{resetAt: now.Add(time.Minute)}
			windows[key] = w
		}
		w.count++
		exceeded := w.count > limit
		mu.Unlock()

		if exceeded {
			err := &utils.RateLimitedError{Message: "คำขอถี่เกินไป กรุณาลองใหม่อีกครั้ง"}
			c.JSON(utils.HTTPStatus(err), gin.H{
				"success": false,
				"error":   err.Error(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
