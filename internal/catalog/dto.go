package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/pay2u-app/pay2u-backend/pkg/enums"
)

// ListServicesParams describe the filters supported by the service list.
type ListServicesParams struct {
	CategoryID  uuid.UUID
	PopularOnly bool
	NewOnly     bool
}

// CategoryView exposes a catalog category to API consumers.
type CategoryView struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
}

// ServiceSummary is the list representation of a catalog service.
type ServiceSummary struct {
	ID              uuid.UUID `json:"id"`
	CategoryID      uuid.UUID `json:"category_id"`
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	LogoURL         *string   `json:"logo_url,omitempty"`
	CashbackPercent int       `json:"cashback_percent"`
	IsPopular       bool      `json:"is_popular"`
	IsNew           bool      `json:"is_new"`
}

// ServiceDetail is the single-service representation with tariffs and rating.
type ServiceDetail struct {
	ServiceSummary
	Description   *string       `json:"description,omitempty"`
	Category      *CategoryView `json:"category,omitempty"`
	AverageRating float64       `json:"average_rating"`
	Tariffs       []TariffView  `json:"tariffs"`
}

// TariffView carries a tariff plus its computed pricing.
type TariffView struct {
	ID              uuid.UUID            `json:"id"`
	ServiceID       uuid.UUID            `json:"service_id"`
	Name            string               `json:"name"`
	Description     *string              `json:"description,omitempty"`
	DurationMonths  enums.TariffDuration `json:"duration_months"`
	BaseMonthlyCost int64                `json:"base_monthly_cost"`
	MonthlyCost     int64                `json:"monthly_cost"`
	TotalCost       int64                `json:"total_cost"`
	CashbackPercent int                  `json:"cashback_percent"`
}

// newServiceWindow is how long a service counts as new after publication.
const newServiceWindow = 30 * 24 * time.Hour
