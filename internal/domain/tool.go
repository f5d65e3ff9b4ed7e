package domain

type ToolStatus string

const (
	ToolStatusAvailable   ToolStatus = "AVAILABLE"
	ToolStatusUnavailable ToolStatus = "UNAVAILABLE"
)

type Tool struct {
	ID                 int64      `json:"id"`
	OwnerID            int64      `json:"ownerId"`
	Name               string     `json:"name"`
	Status             ToolStatus `json:"status"`
	PricePerDayCents   int64      `json:"pricePerDayCents"`
	PricePerWeekCents  int64      `json:"pricePerWeekCents"`
	PricePerMonthCents int64      `json:"pricePerMonthCents"`
}
