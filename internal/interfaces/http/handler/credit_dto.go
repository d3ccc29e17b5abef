package handler

// OpenCreditSaleRequest represents a request to open a credit record for a sale
// @Description Request body for opening a credit sale
type OpenCreditSaleRequest struct {
	SaleID        string  `json:"sale_id" binding:"required,uuid" example:"a6a7b8c9-0d1e-2f3a-4b5c-6d7e8f9a0b1c"`
	CustomerPhone string  `json:"customer_phone" binding:"required,min=7,max=32" example:"+254712345678"`
	CustomerName  string  `json:"customer_name" binding:"max=200" example:"Wanjiru Kamau"`
	TotalAmount   float64 `json:"total_amount" binding:"required,gt=0" example:"4500.00"`
}

// RecordPaymentRequest represents a request to record a payment against a credit sale
// @Description Request body for recording a credit payment
type RecordPaymentRequest struct {
	CreditSaleID  string  `json:"credit_sale_id" binding:"required,uuid" example:"a6a7b8c9-0d1e-2f3a-4b5c-6d7e8f9a0b1c"`
	Amount        float64 `json:"amount" binding:"required,gt=0" example:"1500.00"`
	PaymentMethod string  `json:"payment_method" binding:"max=32" example:"MPESA"`
	Notes         string  `json:"notes" binding:"max=500" example:"Paid at counter"`
}

// ListCreditSalesRequest represents query parameters for listing credit sales
type ListCreditSalesRequest struct {
	Status        string `form:"status" binding:"omitempty,oneof=PENDING PARTIAL PAID"`
	CustomerPhone string `form:"customer_phone"`
	Page          int    `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize      int    `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
}
