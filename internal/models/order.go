package models

// OrderResponse is returned by every reorder endpoint
type OrderResponse struct {
	Result string `json:"result" example:"success"`
}

// OrderResultSuccess is the result of an accepted reorder request
const OrderResultSuccess = "success"
