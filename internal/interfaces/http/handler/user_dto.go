package handler

// CreateUserRequest represents the request to create a staff account
type CreateUserRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=32" example:"grace.njeri"`
	Password    string `json:"password" binding:"required,min=8,max=128" example:"Password123"`
	DisplayName string `json:"display_name" binding:"omitempty,max=200" example:"Grace Njeri"`
	Phone       string `json:"phone" binding:"omitempty,max=32" example:"+254712345678"`
	Role        string `json:"role" binding:"required,oneof=owner cashier pharmacist" example:"cashier"`
}
