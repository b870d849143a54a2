package api

import (
	"net/http"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/Domenick1991/roombooking/internal/service/invoice"
	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	service invoice.InvoiceUseCase
}

type bulkInvoiceRequest struct {
	IDs []int64 `json:"ids"`
}

type bulkInvoiceResponse struct {
	Results []domain.BulkResult `json:"results"`
}

func NewInvoiceHandler(service invoice.InvoiceUseCase) *InvoiceHandler {
	return &InvoiceHandler{service: service}
}

func (h *InvoiceHandler) Register(router *gin.RouterGroup) {
	router.GET("/unpaid", h.unpaid)
	router.GET("/paid", h.paid)
	router.GET("/user/:id", h.forUser)
	router.POST("/cancel", h.cancel)
	router.POST("/delete", h.delete)
	router.GET("/:id", h.get)
	router.POST("/:id/pay", h.pay)
}

func (h *InvoiceHandler) get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	view, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *InvoiceHandler) pay(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	paid, err := h.service.MarkPaid(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if !paid {
		c.JSON(http.StatusNotFound, errorResponse{Error: "invoice not found", Kind: "not_found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": domain.InvoiceStatusPaid})
}

func (h *InvoiceHandler) unpaid(c *gin.Context) {
	views, err := h.service.Unpaid(c.Request.Context())
	h.respondList(c, views, err)
}

func (h *InvoiceHandler) paid(c *gin.Context) {
	views, err := h.service.Paid(c.Request.Context())
	h.respondList(c, views, err)
}

func (h *InvoiceHandler) forUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	views, err := h.service.ForUser(c.Request.Context(), id)
	h.respondList(c, views, err)
}

func (h *InvoiceHandler) respondList(c *gin.Context, views []domain.InvoiceView, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	if views == nil {
		views = []domain.InvoiceView{}
	}
	c.JSON(http.StatusOK, views)
}

func (h *InvoiceHandler) bindIDs(c *gin.Context) ([]int64, bool) {
	var req bulkInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err.Error())
		return nil, false
	}
	if len(req.IDs) == 0 {
		badRequest(c, "ids", "must not be empty")
		return nil, false
	}
	return req.IDs, true
}

func (h *InvoiceHandler) cancel(c *gin.Context) {
	ids, ok := h.bindIDs(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, bulkInvoiceResponse{Results: h.service.CancelInvoices(c.Request.Context(), ids)})
}

func (h *InvoiceHandler) delete(c *gin.Context) {
	ids, ok := h.bindIDs(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, bulkInvoiceResponse{Results: h.service.DeleteInvoices(c.Request.Context(), ids)})
}
