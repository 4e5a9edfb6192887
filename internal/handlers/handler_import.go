package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pennywise-app/pennywise_backend/internal/apperrors"
	portssvc "github.com/pennywise-app/pennywise_backend/internal/core/ports/services"
	"github.com/pennywise-app/pennywise_backend/internal/dto"
	"github.com/pennywise-app/pennywise_backend/internal/middleware"
)

// importHandler handles HTTP requests for statement imports.
type importHandler struct {
	importService portssvc.ImportSvcFacade
}

func newImportHandler(is portssvc.ImportSvcFacade) *importHandler {
	return &importHandler{importService: is}
}

// registerStatementFormatRoutes registers the format catalogue route.
func registerStatementFormatRoutes(rg *gin.RouterGroup, importService portssvc.ImportSvcFacade) {
	h := newImportHandler(importService)
	rg.GET("/statement-formats", h.listStatementFormats)
}

// registerImportRoutes registers ledger-scoped import routes.
func registerImportRoutes(rg *gin.RouterGroup, importService portssvc.ImportSvcFacade) {
	h := newImportHandler(importService)

	imports := rg.Group("/imports")
	{
		imports.POST("/preview", h.previewStatement)
		imports.POST("", h.reconcileStatement)
	}
}

// listStatementFormats godoc
// @Summary List supported statement formats
// @Description Retrieves the registered bank/export formats a statement can be imported as
// @Tags imports
// @Produce  json
// @Success 200 {object} dto.ListStatementFormatsResponse
// @Router /statement-formats [get]
func (h *importHandler) listStatementFormats(c *gin.Context) {
	formats := h.importService.ListStatementFormats(c.Request.Context())
	c.JSON(http.StatusOK, dto.ListStatementFormatsResponse{Formats: dto.ToStatementFormatResponse(formats)})
}

// readStatementUpload extracts the format id and statement bytes from the
// multipart form. Responds with a 400 and returns false on any problem.
func readStatementUpload(c *gin.Context, logger *slog.Logger) (string, []byte, bool) {
	formatID := c.PostForm("formatID")
	if formatID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "formatID form field is required"})
		return "", nil, false
	}

	fileHeader, err := c.FormFile("statement")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "statement file is required: " + err.Error()})
		return "", nil, false
	}
	file, err := fileHeader.Open()
	if err != nil {
		logger.Error("Failed to open uploaded statement", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read statement file"})
		return "", nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		logger.Error("Failed to read uploaded statement", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read statement file"})
		return "", nil, false
	}
	return formatID, data, true
}

// previewStatement godoc
// @Summary Preview a statement import
// @Description Parses and resolves a statement against the ledger without committing anything
// @Tags imports
// @Accept  multipart/form-data
// @Produce  json
// @Param   ledger_id path string true "Ledger ID"
// @Param   formatID formData string true "Statement format ID"
// @Param   statement formData file true "Statement file"
// @Success 200 {object} dto.ImportPreviewResponse
// @Failure 400 {object} map[string]string "Unknown format, undecodable payload, or upload too large"
// @Failure 404 {object} map[string]string "Ledger not found"
// @Failure 500 {object} map[string]string "Failed to preview statement"
// @Router /ledgers/{ledger_id}/imports/preview [post]
func (h *importHandler) previewStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ledgerID := c.Param("ledger_id")

	formatID, data, ok := readStatementUpload(c, logger)
	if !ok {
		return
	}

	plan, err := h.importService.PreviewStatement(c.Request.Context(), ledgerID, formatID, data)
	if err != nil {
		importError(c, logger, err, "Failed to preview statement")
		return
	}

	c.JSON(http.StatusOK, dto.ToImportPreviewResponse(plan))
}

// reconcileStatement godoc
// @Summary Import a statement
// @Description Reconciles a statement into the ledger atomically: missing accounts are created and everything commits or nothing does. The optional controls field carries per-row skip, force-duplicate, and override decisions made after a preview.
// @Tags imports
// @Accept  multipart/form-data
// @Produce  json
// @Param   ledger_id path string true "Ledger ID"
// @Param   formatID formData string true "Statement format ID"
// @Param   statement formData file true "Statement file"
// @Param   controls formData string false "Row-level controls as JSON (dto.ImportControlsRequest)"
// @Success 200 {object} dto.ImportResultResponse
// @Failure 400 {object} map[string]string "Unknown format, undecodable payload, bad controls, or upload too large"
// @Failure 404 {object} map[string]string "Ledger not found"
// @Failure 500 {object} map[string]string "Failed to import statement"
// @Router /ledgers/{ledger_id}/imports [post]
func (h *importHandler) reconcileStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ledgerID := c.Param("ledger_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	formatID, data, ok := readStatementUpload(c, logger)
	if !ok {
		return
	}

	var controlsReq dto.ImportControlsRequest
	if raw := c.PostForm("controls"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &controlsReq); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid controls: " + err.Error()})
			return
		}
	}

	summary, err := h.importService.ReconcileStatement(c.Request.Context(), ledgerID, formatID, data, dto.ToRunControls(controlsReq), userID)
	if err != nil {
		importError(c, logger, err, "Failed to import statement")
		return
	}

	c.JSON(http.StatusOK, dto.ToImportResultResponse(summary))
}

func importError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Statement rejected", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Ledger not found"})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
