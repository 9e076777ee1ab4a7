package handler

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jitterlabs/order-api/internal/domain/order"
)

// ValidationError reports the first failing field check of a request body.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// fieldCheck is one entry of a request's validation list.
type fieldCheck struct {
	field  string
	reason string
	ok     func() bool
}

// runChecks walks the check list in order and returns the first failure.
func runChecks(checks []fieldCheck) error {
	for _, c := range checks {
		if !c.ok() {
			return &ValidationError{Field: c.field, Reason: c.reason}
		}
	}
	return nil
}

type orderItemRequest struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

func itemChecks(items []orderItemRequest) []fieldCheck {
	checks := []fieldCheck{
		{field: "items", reason: "at least one item is required", ok: func() bool { return len(items) > 0 }},
	}
	for i := range items {
		it := items[i]
		checks = append(checks,
			fieldCheck{
				field:  fmt.Sprintf("items[%d].productId", i),
				reason: "required",
				ok:     func() bool { return it.ProductID != "" },
			},
			fieldCheck{
				field:  fmt.Sprintf("items[%d].quantity", i),
				reason: "must be at least 1",
				ok:     func() bool { return it.Quantity >= 1 },
			},
			fieldCheck{
				field:  fmt.Sprintf("items[%d].unitPrice", i),
				reason: "must not be negative",
				ok:     func() bool { return !it.UnitPrice.IsNegative() },
			},
		)
	}
	return checks
}

func toLineItems(items []orderItemRequest) []order.LineItem {
	out := make([]order.LineItem, len(items))
	for i, it := range items {
		out[i] = order.LineItem{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.UnitPrice}
	}
	return out
}

// createOrderRequest mirrors the order submission wire shape.
type createOrderRequest struct {
	OrderCode    string             `json:"orderCode"`
	TotalValue   decimal.Decimal    `json:"totalValue"`
	CreationDate string             `json:"creationDate"`
	Items        []orderItemRequest `json:"items"`
}

// Submission validates the request against its check list and converts it to
// the domain submission. A malformed creation date is a caller error, never
// silently defaulted.
func (req createOrderRequest) Submission() (order.Submission, error) {
	checks := append([]fieldCheck{
		{field: "orderCode", reason: "required", ok: func() bool { return req.OrderCode != "" }},
		{field: "totalValue", reason: "must not be negative", ok: func() bool { return !req.TotalValue.IsNegative() }},
		{field: "creationDate", reason: "must be an ISO-8601 timestamp", ok: func() bool {
			_, err := time.Parse(time.RFC3339, req.CreationDate)
			return err == nil
		}},
	}, itemChecks(req.Items)...)
	if err := runChecks(checks); err != nil {
		return order.Submission{}, err
	}

	created, _ := time.Parse(time.RFC3339, req.CreationDate)
	return order.Submission{
		Code:         req.OrderCode,
		Total:        req.TotalValue,
		CreationDate: created,
		Items:        toLineItems(req.Items),
	}, nil
}

// updateOrderRequest is the partial-overwrite variant: absent scalar fields
// keep their stored values, while items always replace the existing set.
type updateOrderRequest struct {
	OrderCode    string             `json:"orderCode"`
	TotalValue   *decimal.Decimal   `json:"totalValue"`
	CreationDate string             `json:"creationDate"`
	Items        []orderItemRequest `json:"items"`
}

// Patch validates the request and converts it to the domain patch.
func (req updateOrderRequest) Patch() (order.Patch, error) {
	checks := append([]fieldCheck{
		{field: "totalValue", reason: "must not be negative", ok: func() bool {
			return req.TotalValue == nil || !req.TotalValue.IsNegative()
		}},
		{field: "creationDate", reason: "must be an ISO-8601 timestamp", ok: func() bool {
			if req.CreationDate == "" {
				return true
			}
			_, err := time.Parse(time.RFC3339, req.CreationDate)
			return err == nil
		}},
	}, itemChecks(req.Items)...)
	if err := runChecks(checks); err != nil {
		return order.Patch{}, err
	}

	patch := order.Patch{
		Code:  req.OrderCode,
		Total: req.TotalValue,
		Items: toLineItems(req.Items),
	}
	if req.CreationDate != "" {
		created, _ := time.Parse(time.RFC3339, req.CreationDate)
		patch.CreationDate = &created
	}
	return patch, nil
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (req registerRequest) Validate() error {
	return runChecks([]fieldCheck{
		{field: "email", reason: "required", ok: func() bool { return req.Email != "" }},
		{field: "password", reason: "must be at least 6 characters", ok: func() bool { return len(req.Password) >= 6 }},
		{field: "name", reason: "required", ok: func() bool { return req.Name != "" }},
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req loginRequest) Validate() error {
	return runChecks([]fieldCheck{
		{field: "email", reason: "required", ok: func() bool { return req.Email != "" }},
		{field: "password", reason: "required", ok: func() bool { return req.Password != "" }},
	})
}
