package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"newsdesk/api/handlers"
	"newsdesk/api/middleware"
	"newsdesk/auth"
	"newsdesk/config"
	"newsdesk/db"
	"newsdesk/fetcher"
	"newsdesk/repositories"
	"newsdesk/storage"
)

// New wires the full HTTP surface: public post reads, superadmin source
// administration and the WebSocket ingestion trigger.
func New(cfg config.AppConfig, jwtm *auth.JWTManager, store storage.Store) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogging())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		if err := db.Database().RunCommand(context.Background(), bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "mongo": "down", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Locally stored images are served straight from disk.
	r.Static("/static", "./static")

	postRepo := repositories.NewPostRepository(db.Database())
	sourceRepo := repositories.NewSourceRepository(db.Database())

	newRunner := func(ctx context.Context, authorID string) handlers.Runner {
		return fetcher.New(ctx, cfg, fetcher.Deps{
			Posts:   postRepo,
			Sources: sourceRepo,
			Store:   store,
		}, authorID)
	}

	api := r.Group("/api/v1")
	{
		api.GET("/posts", handlers.ListPostsHandler(postRepo))
		api.GET("/posts/:id", handlers.GetPostHandler(postRepo))

		admin := api.Group("", middleware.RequireRole(jwtm, auth.RoleSuperadmin))
		{
			admin.GET("/news-sources", handlers.ListSourcesHandler(sourceRepo))
			admin.POST("/news-sources", handlers.CreateSourceHandler(sourceRepo))
			admin.DELETE("/news-sources/:id", handlers.DeleteSourceHandler(sourceRepo))
		}

		// The WebSocket endpoint authenticates in-band (first message is the
		// token), so it sits outside the header middleware.
		api.GET("/fetch-news", handlers.FetchNewsHandler(jwtm, newRunner))
	}

	return r
}
