// internal/handler/handler.go
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"directorassist/internal/apperrors"
)

// requestID retourne l'identifiant de corrélation de la requête
func requestID(c *gin.Context) string {
	return c.GetHeader("X-Request-ID")
}

// respondError écrit la réponse d'erreur en mappant le type d'erreur sur le
// code HTTP correspondant
func respondError(c *gin.Context, message string, err error) {
	logrus.WithError(err).Error(message)
	c.JSON(apperrors.KindOf(err).HTTPStatus(), gin.H{
		"error":      message,
		"details":    err.Error(),
		"request_id": requestID(c),
	})
}

// bindError écrit la réponse d'un corps de requête invalide
func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":      "Invalid request body",
		"details":    err.Error(),
		"request_id": requestID(c),
	})
}

// parseUUIDParam lit un paramètre de chemin UUID; une valeur invalide écrit
// la réponse d'erreur et retourne false
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid " + name,
			"request_id": requestID(c),
		})
		return uuid.Nil, false
	}
	return id, true
}
