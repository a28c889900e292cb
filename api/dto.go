/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers and the factory, not in DTOs. DTOs are
  pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/rule.go: RuleJSON / PromoJSON definition types
*/
package api

import (
	"github.com/trm/pricing-engine/pricing"
)

// =============================================================================
// PRICING
// =============================================================================

// CalculateRequest is the request to price one job-posting purchase.
type CalculateRequest struct {
	Category  string `json:"category,omitempty"`
	Featured  bool   `json:"is_featured,omitempty"`
	Urgent    bool   `json:"is_urgent,omitempty"`
	Quantity  int    `json:"quantity"`
	CompanyID string `json:"company_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	PromoCode string `json:"promo_code,omitempty"`
}

// ToRequest converts the DTO to the engine's input type.
func (r CalculateRequest) ToRequest() pricing.Request {
	return pricing.Request{
		Category:  r.Category,
		Featured:  r.Featured,
		Urgent:    r.Urgent,
		Quantity:  r.Quantity,
		CompanyID: pricing.CompanyID(r.CompanyID),
		UserID:    pricing.UserID(r.UserID),
		PromoCode: r.PromoCode,
	}
}

// ValidatePromoRequest is the request for standalone promo validation.
type ValidatePromoRequest struct {
	Code     string `json:"code"`
	Amount   string `json:"amount"` // decimal string, e.g. "50000"
	UserID   string `json:"user_id,omitempty"`
	Company  string `json:"company_id,omitempty"`
	Category string `json:"category,omitempty"`
}

// =============================================================================
// JOBS
// =============================================================================

// JobDTO represents a posting record in API responses.
type JobDTO struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// CreateJobRequest is the request to record a posting.
type CreateJobRequest struct {
	CompanyID string `json:"company_id"`
	Status    string `json:"status,omitempty"` // default "active"
	CreatedAt string `json:"created_at,omitempty"`
}

// JobCountDTO reports a company's in-month posting count.
type JobCountDTO struct {
	CompanyID string `json:"company_id"`
	Since     string `json:"since"`
	Count     int    `json:"count"`
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// HolidayDTO represents one maintained holiday.
type HolidayDTO struct {
	ID   string `json:"id"`
	Date string `json:"date"` // 2006-01-02
	Name string `json:"name"`
}

// CreateHolidayRequest is the request to add a holiday.
type CreateHolidayRequest struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

// =============================================================================
// REDEMPTIONS
// =============================================================================

// RedeemRequest records one promo redemption after checkout.
type RedeemRequest struct {
	UserID string `json:"user_id,omitempty"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
