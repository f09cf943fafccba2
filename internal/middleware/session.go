package middleware

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	SessionCookieName  = "foundersbook.sid"
	SessionRedisPrefix = "sess:"
	userLocal          = "user"
)

// SessionUser is the identity the auth service stores under "user" in the
// session document.
type SessionUser struct {
	UserID string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// ID parses UserID; the zero UUID is returned for malformed sessions.
func (u *SessionUser) ID() uuid.UUID {
	id, err := uuid.Parse(u.UserID)
	if err != nil {
		return uuid.Nil
	}
	return id
}

type sessionDoc struct {
	User *SessionUser `json:"user"`
}

// ConnectRedis parses a redis:// URL and returns a client. An empty URL
// yields nil so callers can run without Redis.
func ConnectRedis(url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opt), nil
}

// Session loads the session document named by the cookie and exposes its
// user via CurrentUser. Sessions are issued and written by the auth service;
// this middleware only reads them. A nil client disables lookups.
func Session(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rdb == nil {
			return c.Next()
		}
		sid := c.Cookies(SessionCookieName)
		// signed cookies look like "s:<id>.<signature>"
		if strings.HasPrefix(sid, "s:") {
			sid = strings.SplitN(sid[2:], ".", 2)[0]
		}
		if sid == "" {
			return c.Next()
		}

		b, err := rdb.Get(context.Background(), SessionRedisPrefix+sid).Bytes()
		if err != nil {
			if err != redis.Nil {
				log.Warn().Err(err).Str("trace_id", GetTraceID(c)).Msg("Session lookup failed")
			}
			return c.Next()
		}
		var doc sessionDoc
		if err := json.Unmarshal(b, &doc); err == nil && doc.User != nil && doc.User.ID() != uuid.Nil {
			c.Locals(userLocal, doc.User)
		}
		return c.Next()
	}
}

// CurrentUser returns the session user, if any.
func CurrentUser(c *fiber.Ctx) (*SessionUser, bool) {
	u, ok := c.Locals(userLocal).(*SessionUser)
	return u, ok && u != nil
}

// SetUser attaches u to the request; used by Session and by tests.
func SetUser(c *fiber.Ctx, u *SessionUser) {
	c.Locals(userLocal, u)
}
