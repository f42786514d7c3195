package exchange

import (
	"fmt"
	"strings"
	"time"
)

const (
	SideLong  = "long"
	SideShort = "short"
)

// OrderRequest describes a market order for the tracked position.
type OrderRequest struct {
	PositionID string  // Local position id, echoed into the client order id
	Symbol     string  // Any spelling accepted by pkg/symbol
	Side       string  // Position side: "long" or "short"
	Quantity   float64 // Contracts / base units
	RefPrice   float64 // Last known price; used by paper fills and for logging
	Reason     string  // Close reason for logging
}

// Validate checks the fields every executor relies on.
func (r OrderRequest) Validate() error {
	if strings.TrimSpace(r.Symbol) == "" {
		return fmt.Errorf("order symbol is required")
	}
	switch r.Side {
	case SideLong, SideShort:
	default:
		return fmt.Errorf("order side must be long or short, got %q", r.Side)
	}
	if r.Quantity <= 0 {
		return fmt.Errorf("order quantity must be > 0, got %v", r.Quantity)
	}
	return nil
}

// OrderResult is what the venue reported back.
type OrderResult struct {
	OrderID       string    `json:"order_id"`
	ClientOrderID string    `json:"client_order_id"`
	Symbol        string    `json:"symbol"`
	Side          string    `json:"side"`
	Status        string    `json:"status"`
	AvgPrice      float64   `json:"avg_price"`
	FilledQty     float64   `json:"filled_qty"`
	Venue         string    `json:"venue"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// OppositeSide returns the side that reduces a position held on side.
func OppositeSide(side string) string {
	if side == SideShort {
		return SideLong
	}
	return SideShort
}
