// Package api exposes the ledger over HTTP.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the ledger routes under /api.
func NewRouter(transactions TransactionService, categories CategoryService) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger(), gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	txn := &transactionHandler{service: transactions}
	cat := &categoryHandler{service: categories}

	api := r.Group("/api")
	{
		api.POST("/transacoes", txn.create)
		api.GET("/transacoes", txn.list)
		api.GET("/transacoes/:id", txn.get)
		api.PUT("/transacoes/:id", txn.update)
		api.DELETE("/transacoes/:id", txn.remove)

		api.POST("/categorias", cat.create)
		api.GET("/categorias", cat.list)
		api.GET("/categorias/:id", cat.get)
		api.PUT("/categorias/:id", cat.update)
		api.DELETE("/categorias/:id", cat.remove)

		api.GET("/tipos", cat.types)
	}

	return r
}

// RequestLogger logs one line per request through slog.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate); len(errs) > 0 {
			attrs = append(attrs, "error", errs.String())
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			slog.ErrorContext(c.Request.Context(), "http request", attrs...)
		case status >= http.StatusBadRequest:
			slog.WarnContext(c.Request.Context(), "http request", attrs...)
		default:
			slog.DebugContext(c.Request.Context(), "http request", attrs...)
		}
	}
}
