package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	ledgerapp "github.com/posledger/backend/internal/application/ledger"
)

// CreditHandler handles credit sale API endpoints
type CreditHandler struct {
	BaseHandler
	creditService *ledgerapp.CreditLedgerService
}

// NewCreditHandler creates a new CreditHandler
func NewCreditHandler(creditService *ledgerapp.CreditLedgerService) *CreditHandler {
	return &CreditHandler{
		creditService: creditService,
	}
}

// Open godoc
// @ID           openCreditSale
// @Summary      Open a credit sale
// @Description  Create a credit record for a completed sale with the full amount outstanding
// @Tags         credit
// @Accept       json
// @Produce      json
// @Param        request body OpenCreditSaleRequest true "Credit sale creation request"
// @Success      201 {object} dto.Response{data=ledgerapp.CreditSaleResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /credit [post]
func (h *CreditHandler) Open(c *gin.Context) {
	businessID, err := getBusinessID(c)
	if err != nil {
		h.Unauthorized(c, "Business ID not found in token")
		return
	}

	var req OpenCreditSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	saleID, err := uuid.Parse(req.SaleID)
	if err != nil {
		h.BadRequest(c, "Invalid sale ID")
		return
	}

	userID, _ := getUserID(c)

	sale, err := h.creditService.OpenCreditSale(c.Request.Context(), ledgerapp.OpenCreditSaleInput{
		BusinessID:    businessID,
		SaleID:        saleID,
		CustomerPhone: req.CustomerPhone,
		CustomerName:  req.CustomerName,
		TotalAmount:   decimal.NewFromFloat(req.TotalAmount),
		OpenedBy:      userID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, sale)
}

// RecordPayment godoc
// @ID           recordCreditPayment
// @Summary      Record a credit payment
// @Description  Record a partial or full payment against an open credit sale
// @Tags         credit
// @Accept       json
// @Produce      json
// @Param        request body RecordPaymentRequest true "Payment request"
// @Success      200 {object} dto.Response{data=ledgerapp.CreditSaleResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /credit/payment [post]
func (h *CreditHandler) RecordPayment(c *gin.Context) {
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	creditSaleID, err := uuid.Parse(req.CreditSaleID)
	if err != nil {
		h.BadRequest(c, "Invalid credit sale ID")
		return
	}

	// Operator is taken from the token, never from the request body
	userID, _ := getUserID(c)

	sale, err := h.creditService.RecordPayment(c.Request.Context(), ledgerapp.RecordPaymentInput{
		CreditSaleID:  creditSaleID,
		Amount:        decimal.NewFromFloat(req.Amount),
		PaymentMethod: req.PaymentMethod,
		OperatorID:    userID,
		Notes:         req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sale)
}

// GetByID godoc
// @ID           getCreditSaleById
// @Summary      Get credit sale by ID
// @Description  Retrieve a credit sale with its full payment history
// @Tags         credit
// @Produce      json
// @Param        id path string true "Credit sale ID"
// @Success      200 {object} dto.Response{data=ledgerapp.CreditSaleResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /credit/{id} [get]
func (h *CreditHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid credit sale ID")
		return
	}

	sale, err := h.creditService.GetCreditSale(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sale)
}

// List godoc
// @ID           listCreditSales
// @Summary      List credit sales
// @Description  List credit sales scoped to the caller's business, newest first
// @Tags         credit
// @Produce      json
// @Param        status query string false "Filter by status" Enums(PENDING, PARTIAL, PAID)
// @Param        customer_phone query string false "Filter by customer phone"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]ledgerapp.CreditSaleResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /credit [get]
func (h *CreditHandler) List(c *gin.Context) {
	businessID, err := getBusinessID(c)
	if err != nil {
		h.Unauthorized(c, "Business ID not found in token")
		return
	}

	var req ListCreditSalesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	filter := ledgerapp.ListCreditSalesFilter{
		Status:        req.Status,
		CustomerPhone: req.CustomerPhone,
		BusinessID:    &businessID,
		Page:          req.Page,
		PageSize:      req.PageSize,
	}
	sales, total, err := h.creditService.ListCreditSales(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := req.Page, req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, sales, total, page, pageSize)
}

// ListByCustomer godoc
// @ID           listCreditSalesByCustomer
// @Summary      List credit sales for a customer
// @Description  List all credit sales for a customer identified by phone number
// @Tags         credit
// @Produce      json
// @Param        phone path string true "Customer phone number"
// @Success      200 {object} dto.Response{data=[]ledgerapp.CreditSaleResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /credit/customer/{phone} [get]
func (h *CreditHandler) ListByCustomer(c *gin.Context) {
	businessID, err := getBusinessID(c)
	if err != nil {
		h.Unauthorized(c, "Business ID not found in token")
		return
	}

	phone := c.Param("phone")
	if phone == "" {
		h.BadRequest(c, "Customer phone is required")
		return
	}

	sales, _, err := h.creditService.ListCreditSales(c.Request.Context(), ledgerapp.ListCreditSalesFilter{
		CustomerPhone: phone,
		BusinessID:    &businessID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sales)
}

// Summary godoc
// @ID           getCreditSummary
// @Summary      Get credit summary
// @Description  Recompute the aggregate outstanding position across credit sales
// @Tags         credit
// @Produce      json
// @Success      200 {object} dto.Response{data=ledgerapp.CreditSummaryResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /credit/summary [get]
func (h *CreditHandler) Summary(c *gin.Context) {
	businessID, err := getBusinessID(c)
	if err != nil {
		h.Unauthorized(c, "Business ID not found in token")
		return
	}

	summary, err := h.creditService.Summarize(c.Request.Context(), &businessID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}
