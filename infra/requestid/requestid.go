package requestid

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/gin-gonic/gin"
)

const Header = "X-Request-ID"

type ctxKey struct{}

func FromContext(ctx context.Context) string {
	if s, ok := ctx.Value(ctxKey{}).(string); ok {
		return s
	}
	return ""
}

func NewContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// Generate returns 32 hex chars, the width of an OpenTelemetry trace id.
func Generate() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return hex.EncodeToString(b)
}

// Middleware keeps the caller's X-Request-ID or assigns one, and echoes it back.
func Middleware(c *gin.Context) {
	id := c.GetHeader(Header)
	if id == "" {
		id = Generate()
		c.Request.Header.Set(Header, id)
	}
	c.Request = c.Request.WithContext(NewContext(c.Request.Context(), id))
	c.Header(Header, id)
	c.Next()
}
