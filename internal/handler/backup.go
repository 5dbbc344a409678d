// internal/handler/backup.go
package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"directorassist/internal/service"
)

// BackupHandler gère les endpoints d'export et d'import de sauvegarde
type BackupHandler struct {
	backupService service.BackupServiceInterface
}

// NewBackupHandler crée une nouvelle instance du handler de sauvegarde
func NewBackupHandler(backupService service.BackupServiceInterface) *BackupHandler {
	return &BackupHandler{
		backupService: backupService,
	}
}

// Export retourne le document de sauvegarde complet
func (h *BackupHandler) Export(c *gin.Context) {
	backup, err := h.backupService.Export()
	if err != nil {
		respondError(c, "Failed to export backup", err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="director-assist-backup.json"`)
	c.JSON(http.StatusOK, backup)
}

// Import restaure un document de sauvegarde
func (h *BackupHandler) Import(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		bindError(c, err)
		return
	}

	report, err := h.backupService.Import(raw)
	if err != nil {
		respondError(c, "Failed to import backup", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"report":     report,
		"request_id": requestID(c),
	})
}
