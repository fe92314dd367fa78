package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"newsdesk/models"
	"newsdesk/repositories"
)

type createSourceRequest struct {
	Name string `json:"name" binding:"required"`
	URL  string `json:"url" binding:"required,url"`
}

// ListSourcesHandler returns all configured news sources.
func ListSourcesHandler(repo *repositories.SourceRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := repo.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// CreateSourceHandler registers a new source; URLs are unique.
func CreateSourceHandler(repo *repositories.SourceRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createSourceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		src := &models.NewsSource{
			Name:      strings.TrimSpace(req.Name),
			URL:       strings.TrimSpace(req.URL),
			CreatedBy: c.GetString("subject"),
		}
		if err := repo.Insert(c.Request.Context(), src); err != nil {
			if errors.Is(err, repositories.ErrDuplicateSource) {
				c.JSON(http.StatusConflict, gin.H{"error": "source url already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, src)
	}
}

// DeleteSourceHandler removes a source by id.
func DeleteSourceHandler(repo *repositories.SourceRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := repo.Delete(c.Request.Context(), c.Param("id")); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
