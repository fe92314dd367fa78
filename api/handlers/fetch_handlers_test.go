package handlers

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"newsdesk/auth"
	"newsdesk/fetcher"
	"newsdesk/logger"
)

type scriptedRunner struct {
	events   []fetcher.ProgressEvent
	runErr   error
	authorID string
}

func (r *scriptedRunner) Run(ctx context.Context, emit fetcher.Sink) error {
	for _, ev := range r.events {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := emit(ev); err != nil {
			return err
		}
	}
	return r.runErr
}

func newFetchTestServer(t *testing.T, runner *scriptedRunner) (*httptest.Server, *auth.JWTManager) {
	t.Helper()
	return newFetchServerWithFactory(t, func(ctx context.Context, authorID string) Runner {
		runner.authorID = authorID
		return runner
	})
}

func newFetchServerWithFactory(t *testing.T, factory RunnerFactory) (*httptest.Server, *auth.JWTManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.Init("error")

	t.Setenv("JWT_SECRET", "fetch-handler-test-secret")
	t.Setenv("JWT_ISSUER", "")
	manager, err := auth.NewJWTManagerFromEnv()
	if err != nil {
		t.Fatalf("failed to build jwt manager: %v", err)
	}

	router := gin.New()
	router.GET("/fetch-news", FetchNewsHandler(manager, factory))

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, manager
}

func dialFetch(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/fetch-news"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to dial websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestFetchNewsStreamsProgressEvents(t *testing.T) {
	runner := &scriptedRunner{
		events: []fetcher.ProgressEvent{
			{Stage: fetcher.StageInitializing, Progress: 5, Message: "Found 1 sources."},
			{Stage: fetcher.StageComplete, Progress: 100, Message: "Finished", IsComplete: true},
		},
	}
	server, manager := newFetchTestServer(t, runner)

	token, err := manager.Sign("admin-1", auth.RoleSuperadmin)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	conn := dialFetch(t, server)
	if err := conn.WriteMessage(websocket.TextMessage, []byte(token)); err != nil {
		t.Fatalf("failed to send token: %v", err)
	}

	var got []fetcher.ProgressEvent
	for {
		var ev fetcher.ProgressEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				t.Fatalf("expected normal closure, got %v", err)
			}
			break
		}
		got = append(got, ev)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d: %+v", len(got), got)
	}
	if got[0].Stage != fetcher.StageInitializing || got[0].Progress != 5 {
		t.Fatalf("unexpected first event: %+v", got[0])
	}
	if !got[1].IsComplete || got[1].Progress != 100 {
		t.Fatalf("unexpected final event: %+v", got[1])
	}
	if runner.authorID != "admin-1" {
		t.Fatalf("expected runner bound to token subject, got %q", runner.authorID)
	}
}

func TestFetchNewsRejectsInvalidToken(t *testing.T) {
	server, _ := newFetchTestServer(t, &scriptedRunner{})

	conn := dialFetch(t, server)
	if err := conn.WriteMessage(websocket.TextMessage, []byte("not-a-jwt")); err != nil {
		t.Fatalf("failed to send token: %v", err)
	}

	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, closeAuthFailed) {
		t.Fatalf("expected close code %d, got %v", closeAuthFailed, err)
	}
}

func TestFetchNewsRejectsInsufficientRole(t *testing.T) {
	server, manager := newFetchTestServer(t, &scriptedRunner{})

	token, err := manager.Sign("user-1", auth.RoleUser)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	conn := dialFetch(t, server)
	if err := conn.WriteMessage(websocket.TextMessage, []byte(token)); err != nil {
		t.Fatalf("failed to send token: %v", err)
	}

	_, _, err = conn.ReadMessage()
	if !websocket.IsCloseError(err, closeInsufficient) {
		t.Fatalf("expected close code %d, got %v", closeInsufficient, err)
	}
}

func TestFetchNewsReportsRunFailure(t *testing.T) {
	runner := &scriptedRunner{
		events: []fetcher.ProgressEvent{
			{Stage: fetcher.StageInitializing, Progress: 5, Message: "Found 1 sources."},
		},
		runErr: errors.New("pipeline exploded"),
	}
	server, manager := newFetchTestServer(t, runner)

	token, err := manager.Sign("admin-1", auth.RoleSuperadmin)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	conn := dialFetch(t, server)
	if err := conn.WriteMessage(websocket.TextMessage, []byte(token)); err != nil {
		t.Fatalf("failed to send token: %v", err)
	}

	var first fetcher.ProgressEvent
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("failed to read first event: %v", err)
	}

	var final fetcher.ProgressEvent
	if err := conn.ReadJSON(&final); err != nil {
		t.Fatalf("failed to read final event: %v", err)
	}
	if final.Stage != fetcher.StageCriticalError {
		t.Fatalf("expected stage %q, got %q", fetcher.StageCriticalError, final.Stage)
	}
	if !final.IsComplete {
		t.Fatalf("expected final event to be marked complete")
	}
	if !strings.Contains(final.Message, "pipeline exploded") {
		t.Fatalf("expected failure reason in message, got %q", final.Message)
	}
}

func TestFetchNewsCancelsRunOnDisconnect(t *testing.T) {
	started := make(chan struct{})
	canceled := make(chan struct{})
	runner := &blockingRunner{started: started, canceled: canceled}
	server, manager := newFetchServerWithFactory(t, func(context.Context, string) Runner {
		return runner
	})

	token, err := manager.Sign("admin-1", auth.RoleSuperadmin)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	conn := dialFetch(t, server)
	if err := conn.WriteMessage(websocket.TextMessage, []byte(token)); err != nil {
		t.Fatalf("failed to send token: %v", err)
	}

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatalf("runner never started")
	}

	conn.Close()

	select {
	case <-canceled:
	case <-time.After(2 * time.Second):
		t.Fatalf("run context was not canceled after disconnect")
	}
}

type blockingRunner struct {
	started  chan struct{}
	canceled chan struct{}
}

func (r *blockingRunner) Run(ctx context.Context, emit fetcher.Sink) error {
	close(r.started)
	<-ctx.Done()
	close(r.canceled)
	return ctx.Err()
}
