package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"newsdesk/repositories"
)

// ListPostsHandler lists ingested posts, newest first, with pagination.
func ListPostsHandler(repo *repositories.PostRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

		items, err := repo.List(c.Request.Context(), page, pageSize)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// GetPostHandler returns a single post by ObjectID.
func GetPostHandler(repo *repositories.PostRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		post, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusOK, post)
	}
}
