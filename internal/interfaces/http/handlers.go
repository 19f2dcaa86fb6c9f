package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/voldhaul/load-invoicing/internal/application/service"
	"github.com/voldhaul/load-invoicing/internal/domain/entity"
)

// Version is reported by the health check
const Version = "1.0.0"

// Handlers contains all HTTP request handlers
type Handlers struct {
	invoices service.InvoiceService
	exports  service.ExportService
	logger   Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(invoices service.InvoiceService, exports service.ExportService, logger Logger) *Handlers {
	return &Handlers{
		invoices: invoices,
		exports:  exports,
		logger:   logger,
	}
}

// Response wraps the health check payload
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// ErrorResponse is the body of every failed invoice request
type ErrorResponse struct {
	Message string `json:"message"`
}

// SaveResponse is returned after an invoice was stored
type SaveResponse struct {
	OK             bool  `json:"ok"`
	ID             int64 `json:"id"`
	IDBillInvoices int64 `json:"id_bill_invoices"`
}

// PreviewQuery holds the query parameters of GET /invoices/preview
type PreviewQuery struct {
	ClientID      string `form:"client_id"`
	Start         string `form:"start"`
	End           string `form:"end"`
	InvoiceNumber string `form:"invoice_number"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   Version,
		},
	})
}

// Ping handles GET /ping
func (h *Handlers) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ListClients handles GET /invoices/clients
func (h *Handlers) ListClients(c *gin.Context) {
	clients, err := h.invoices.ListClients(c.Request.Context())
	if err != nil {
		h.respondError(c, "list clients", err)
		return
	}
	if clients == nil {
		clients = []*entity.Client{}
	}
	c.JSON(http.StatusOK, clients)
}

// Preview handles GET /invoices/preview
func (h *Handlers) Preview(c *gin.Context) {
	var q PreviewQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Message: "invalid query parameters"})
		return
	}

	// A non-numeric client id is treated like a missing one
	clientID, _ := strconv.ParseInt(strings.TrimSpace(q.ClientID), 10, 64)

	doc, err := h.invoices.BuildPreview(c.Request.Context(), service.PreviewRequest{
		ClientID:      clientID,
		StartDate:     q.Start,
		EndDate:       q.End,
		InvoiceNumber: q.InvoiceNumber,
	})
	if err != nil {
		h.respondError(c, "build preview", err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Save handles POST /invoices/save
func (h *Handlers) Save(c *gin.Context) {
	req, err := decodeSaveRequest(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Message: err.Error()})
		return
	}

	id, err := h.invoices.SaveInvoice(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, "save invoice", err)
		return
	}
	c.JSON(http.StatusOK, SaveResponse{OK: true, ID: id, IDBillInvoices: id})
}

// decodeSaveRequest rejects unknown keys and trailing data
func decodeSaveRequest(body io.Reader) (service.SaveInvoiceRequest, error) {
	var req service.SaveInvoiceRequest
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return req, errors.New("request body is required")
		}
		return req, fmt.Errorf("invalid request body: %v", err)
	}
	if dec.More() {
		return req, errors.New("invalid request body: unexpected data after JSON object")
	}
	return req, nil
}

// ExportPDF handles GET /invoices/:id/pdf
func (h *Handlers) ExportPDF(c *gin.Context) {
	h.export(c, entity.FormatPDF)
}

// ExportXLSX handles GET /invoices/:id/xls
func (h *Handlers) ExportXLSX(c *gin.Context) {
	h.export(c, entity.FormatXLSX)
}

func (h *Handlers) export(c *gin.Context, format string) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid invoice id: " + idStr})
		return
	}

	out, err := h.exports.Export(c.Request.Context(), id, format)
	if err != nil {
		h.respondError(c, "export invoice", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, out.Filename))
	c.Data(http.StatusOK, out.ContentType, out.Content)
}

// statusFor maps service errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, entity.ErrInvoiceNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrUnsupportedFormat):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) respondError(c *gin.Context, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", "op", op, "error", err, "request_id", c.GetString(requestIDKey))
	}
	c.JSON(status, ErrorResponse{Message: err.Error()})
}
