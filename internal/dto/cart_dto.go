package dto

import "github.com/google/uuid"

type CartItemInput struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

type UpdateCartRequest struct {
	Items []CartItemInput `json:"items" validate:"dive"`
}

type MergeCartRequest struct {
	GuestItems []CartItemInput `json:"guestItems" validate:"dive"`
}
