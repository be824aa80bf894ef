package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pay2u-app/pay2u-backend/pkg/db/models"
	pkgerrors "github.com/pay2u-app/pay2u-backend/pkg/errors"
)

type catalogRepository interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	FindCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	ListServices(ctx context.Context, opts serviceQuery) ([]models.Service, error)
	FindService(ctx context.Context, id uuid.UUID) (*models.Service, error)
	ListTariffs(ctx context.Context, serviceID uuid.UUID) ([]models.Tariff, error)
	FindTariff(ctx context.Context, id uuid.UUID) (*models.Tariff, error)
	CountBillableSubscriptions(ctx context.Context, serviceID uuid.UUID) (int64, error)
	SetPopular(ctx context.Context, serviceID uuid.UUID, popular bool) error
	AverageRating(ctx context.Context, serviceID uuid.UUID) (float64, error)
}

// Service exposes the read-only catalog surface plus the popularity hook.
type Service interface {
	ListCategories(ctx context.Context) ([]CategoryView, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*CategoryView, error)
	ListServices(ctx context.Context, params ListServicesParams) ([]ServiceSummary, error)
	GetService(ctx context.Context, id uuid.UUID) (*ServiceDetail, error)
	ListTariffs(ctx context.Context, serviceID uuid.UUID) ([]TariffView, error)
	RecalculatePopular(ctx context.Context, serviceID uuid.UUID) error
}

type service struct {
	repo             catalogRepository
	popularThreshold int64
	now              func() time.Time
}

// NewService builds the catalog service. popularThreshold is the live
// subscription count at which a service is flagged popular.
func NewService(repo catalogRepository, popularThreshold int64) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if popularThreshold <= 0 {
		return nil, fmt.Errorf("popular threshold must be positive")
	}
	return &service{
		repo:             repo,
		popularThreshold: popularThreshold,
		now:              time.Now,
	}, nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryView, error) {
	rows, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	views := make([]CategoryView, len(rows))
	for i, row := range rows {
		views[i] = toCategoryView(row)
	}
	return views, nil
}

func (s *service) GetCategory(ctx context.Context, id uuid.UUID) (*CategoryView, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}
	row, err := s.repo.FindCategory(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup category")
	}
	view := toCategoryView(*row)
	return &view, nil
}

func (s *service) ListServices(ctx context.Context, params ListServicesParams) ([]ServiceSummary, error) {
	query := serviceQuery{
		categoryID:  params.CategoryID,
		popularOnly: params.PopularOnly,
	}
	if params.NewOnly {
		cutoff := s.now().Add(-newServiceWindow)
		query.newerThan = &cutoff
	}

	rows, err := s.repo.ListServices(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list services")
	}

	summaries := make([]ServiceSummary, len(rows))
	for i, row := range rows {
		summaries[i] = s.toServiceSummary(row)
	}
	return summaries, nil
}

func (s *service) GetService(ctx context.Context, id uuid.UUID) (*ServiceDetail, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service id is required")
	}
	row, err := s.repo.FindService(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup service")
	}

	tariffs, err := s.ListTariffs(ctx, row.ID)
	if err != nil {
		return nil, err
	}

	rating, err := s.repo.AverageRating(ctx, row.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "average rating")
	}

	detail := &ServiceDetail{
		ServiceSummary: s.toServiceSummary(*row),
		Description:    row.Description,
		AverageRating:  rating,
		Tariffs:        tariffs,
	}
	if row.Category != nil {
		view := toCategoryView(*row.Category)
		detail.Category = &view
	}
	return detail, nil
}

func (s *service) ListTariffs(ctx context.Context, serviceID uuid.UUID) ([]TariffView, error) {
	if serviceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service id is required")
	}
	rows, err := s.repo.ListTariffs(ctx, serviceID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tariffs")
	}

	views := make([]TariffView, 0, len(rows))
	for _, row := range rows {
		view, err := toTariffView(row)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// RecalculatePopular re-derives a service's popular flag from its live
// subscription count. Lifecycle operations call it after commit, replacing
// the implicit save-signal recalculation of earlier revisions.
func (s *service) RecalculatePopular(ctx context.Context, serviceID uuid.UUID) error {
	if serviceID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "service id is required")
	}
	count, err := s.repo.CountBillableSubscriptions(ctx, serviceID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count subscriptions")
	}
	if err := s.repo.SetPopular(ctx, serviceID, count >= s.popularThreshold); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update popular flag")
	}
	return nil
}

func (s *service) toServiceSummary(row models.Service) ServiceSummary {
	return ServiceSummary{
		ID:              row.ID,
		CategoryID:      row.CategoryID,
		Name:            row.Name,
		Slug:            row.Slug,
		LogoURL:         row.LogoURL,
		CashbackPercent: row.CashbackPercent,
		IsPopular:       row.IsPopular,
		IsNew:           s.now().Sub(row.CreatedAt) < newServiceWindow,
	}
}

func toCategoryView(row models.Category) CategoryView {
	return CategoryView{
		ID:          row.ID,
		Name:        row.Name,
		Slug:        row.Slug,
		Description: row.Description,
	}
}

func toTariffView(row models.Tariff) (TariffView, error) {
	monthly, err := MonthlyCost(row.MonthlyPrice, row.Duration)
	if err != nil {
		return TariffView{}, err
	}
	total, err := TotalCost(row.MonthlyPrice, row.Duration)
	if err != nil {
		return TariffView{}, err
	}

	view := TariffView{
		ID:              row.ID,
		ServiceID:       row.ServiceID,
		Name:            row.Name,
		Description:     row.Description,
		DurationMonths:  row.Duration,
		BaseMonthlyCost: row.MonthlyPrice,
		MonthlyCost:     monthly,
		TotalCost:       total,
	}
	if row.Service != nil {
		view.CashbackPercent = row.Service.CashbackPercent
	}
	return view, nil
}
