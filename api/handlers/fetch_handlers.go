package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"newsdesk/auth"
	"newsdesk/fetcher"
	"newsdesk/logger"
)

// Runner is one pipeline invocation; satisfied by *fetcher.Fetcher.
type Runner interface {
	Run(ctx context.Context, emit fetcher.Sink) error
}

// RunnerFactory builds a Runner bound to the authorizing identity.
type RunnerFactory func(ctx context.Context, authorID string) Runner

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

const (
	closeAuthFailed   = 4001
	closeInsufficient = 4003
)

// FetchNewsHandler streams the progress of one ingestion run over a
// WebSocket. The first client message must be a JWT with the superadmin
// role; every subsequent frame flows server-to-client as a JSON progress
// event. Client disconnect cancels the run.
func FetchNewsHandler(jwtm *auth.JWTManager, newRunner RunnerFactory) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Log.Warnf("websocket upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		_, tokenMsg, err := conn.ReadMessage()
		if err != nil {
			return
		}

		subject, role, err := jwtm.Parse(string(tokenMsg))
		if err != nil {
			closeWith(conn, closeAuthFailed, fmt.Sprintf("Authentication failed: %v", err))
			return
		}
		if role != auth.RoleSuperadmin {
			closeWith(conn, closeInsufficient, "Insufficient permissions")
			return
		}

		ctx, cancel := context.WithCancel(c.Request.Context())
		defer cancel()

		// The client never sends again after the token; a read returning an
		// error is our disconnect signal.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					cancel()
					return
				}
			}
		}()

		runner := newRunner(ctx, subject)
		runErr := runner.Run(ctx, func(ev fetcher.ProgressEvent) error {
			return conn.WriteJSON(ev)
		})

		if runErr != nil {
			logger.Log.Warnf("fetch run aborted: %v", runErr)
			if ctx.Err() == nil {
				// Transport still looks alive: try a final error notice.
				_ = conn.WriteJSON(fetcher.ProgressEvent{
					Stage:      fetcher.StageCriticalError,
					Progress:   100,
					Message:    fmt.Sprintf("An unexpected error occurred: %v", runErr),
					IsComplete: true,
				})
			}
			return
		}

		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
	}
}

func closeWith(conn *websocket.Conn, code int, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(time.Second))
}
