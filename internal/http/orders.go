package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"cosmetics-store/internal/domain"
	"cosmetics-store/internal/service"
)

type orderItemRequest struct {
	ProductID int64           `json:"productId" binding:"required"`
	Quantity  int64           `json:"quantity" binding:"required"`
	Price     decimal.Decimal `json:"price"`
}

type createOrderRequest struct {
	Items           []orderItemRequest `json:"items" binding:"required"`
	ShippingAddress string             `json:"shippingAddress" binding:"required"`
	PaymentMethod   string             `json:"paymentMethod" binding:"required"`
	Notes           string             `json:"notes"`
}

type orderSummaryResponse struct {
	ID              int64           `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	ShippingAddress string          `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	Notes           string          `json:"notes,omitempty"`
	Status          string          `json:"status"`
	Items           string          `json:"items"`
	CreatedAt       string          `json:"createdAt"`
}

func (h *Handler) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	items := make([]service.CartItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.CartItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}

	placed, err := h.orders.PlaceOrder(c.Request.Context(), mustClaims(c), service.PlaceOrderInput{
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
	})
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "order created successfully",
		"orderId":     placed.OrderID,
		"orderNumber": placed.OrderNumber,
		"totalAmount": placed.TotalAmount,
	})
}

func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context(), mustClaims(c))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	resp := make([]orderSummaryResponse, len(orders))
	for i := range orders {
		resp[i] = orderToResponse(orders[i])
	}
	c.JSON(http.StatusOK, resp)
}

func orderToResponse(order domain.OrderSummary) orderSummaryResponse {
	return orderSummaryResponse{
		ID:              order.ID,
		OrderNumber:     order.OrderNumber,
		TotalAmount:     order.TotalAmount,
		ShippingAddress: order.ShippingAddress,
		PaymentMethod:   order.PaymentMethod,
		Notes:           order.Notes,
		Status:          string(order.Status),
		Items:           order.ItemsSummary,
		CreatedAt:       timeRFC3339(order.CreatedAt),
	}
}
