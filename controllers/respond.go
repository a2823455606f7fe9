package controllers

import (
	"github.com/gin-gonic/gin"

	"azzipizza/apperr"
)

func respondError(c *gin.Context, err error) {
	status, message := apperr.Status(err)
	c.JSON(status, gin.H{"error": message})
}
