package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Veraticus/caixa/internal/common"
	"github.com/Veraticus/caixa/internal/storage"
)

const msgInternal = "Não foi possível realizar a operação, pois houve falha na comunicação com a base de dados"

// Envelope is the body of every successful response.
type Envelope struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every failed response.
type ErrorResponse struct {
	Message string            `json:"message"`
	Details []ValidationError `json:"details,omitempty"`
}

// storageValidationErrors are rejected inputs detected by the storage layer.
var storageValidationErrors = []error{
	storage.ErrInvalidAmount,
	storage.ErrInvalidStatus,
	storage.ErrInvalidTransaction,
	storage.ErrInvalidCategory,
	storage.ErrInvalidType,
	storage.ErrInvalidDateRange,
	storage.ErrInvalidID,
	storage.ErrEmptyString,
}

func isValidation(err error) bool {
	if errors.Is(err, common.ErrInvalidInput) {
		return true
	}
	for _, target := range storageValidationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// RespondWithData writes a success envelope.
func RespondWithData(c *gin.Context, code int, message string, data any) {
	c.JSON(code, Envelope{Message: message, Data: data})
}

// RespondWithError writes a bare error message.
func RespondWithError(c *gin.Context, code int, message string) {
	c.JSON(code, ErrorResponse{Message: message})
}

// RespondWithValidationError writes a 400 listing every rejected field.
func RespondWithValidationError(c *gin.Context, validationErrors []ValidationError) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Message: "Dados da requisição inválidos",
		Details: validationErrors,
	})
}

// respondWithServiceError maps a service failure onto a status code.
// notFound is the message used when the entity does not exist.
func respondWithServiceError(c *gin.Context, err error, notFound string) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		RespondWithError(c, http.StatusNotFound, notFound)
	case errors.Is(err, common.ErrDuplicateEntry):
		RespondWithError(c, http.StatusConflict, "Já existe um registro com os mesmos dados")
	case isValidation(err):
		RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled):
		c.Status(http.StatusRequestTimeout)
	default:
		_ = c.Error(err)
		common.LogError(c.Request.Context(), err, "request failed", common.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		})
		RespondWithError(c, http.StatusInternalServerError, msgInternal)
	}
}

// parseID reads the :id path parameter.
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondWithValidationError(c, []ValidationError{{
			Field:   "id",
			Message: "Identificador deve ser um número inteiro positivo",
			Type:    "gt",
		}})
		return 0, false
	}
	return id, true
}

// bindJSON decodes and validates a request body, writing the 400 itself
// when either step fails.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		RespondWithError(c, http.StatusBadRequest, "Corpo da requisição inválido")
		return false
	}
	if validationErrors := ValidateRequest(req); validationErrors != nil {
		RespondWithValidationError(c, validationErrors)
		return false
	}
	return true
}

// bindQuery decodes and validates query parameters.
func bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		RespondWithError(c, http.StatusBadRequest, "Parâmetros de consulta inválidos")
		return false
	}
	if validationErrors := ValidateRequest(req); validationErrors != nil {
		RespondWithValidationError(c, validationErrors)
		return false
	}
	return true
}
