package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/equivalence-api/internal/middleware"
	"github.com/noah-isme/equivalence-api/internal/models"
)

func authContextFrom(c *gin.Context) models.AuthContext {
	return middleware.AuthContextFrom(c)
}
