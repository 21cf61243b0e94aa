package dto

// ===================== Request DTOs =====================

// MarkReadRequest marks a set of notifications as read
type MarkReadRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,uuid"`
}

// ===================== Response DTOs =====================

// UnreadCountResponse for the unread badge
type UnreadCountResponse struct {
	Count int `json:"count"`
}
