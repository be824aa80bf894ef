package ratings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/pay2u-app/pay2u-backend/pkg/db/models"
	pkgerrors "github.com/pay2u-app/pay2u-backend/pkg/errors"
)

const (
	minStars = 1
	maxStars = 5
)

// RatingView is the API shape of a user's rating for a service.
type RatingView struct {
	ServiceID uuid.UUID `json:"service_id"`
	Stars     int       `json:"stars"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service records and reads per-user service ratings.
type Service interface {
	Rate(ctx context.Context, userID, serviceID uuid.UUID, stars int) (*RatingView, error)
	GetMine(ctx context.Context, userID, serviceID uuid.UUID) (*RatingView, error)
}

// ServiceParams groups dependencies for the rating service.
type ServiceParams struct {
	Repo   Repository
	Logger zerolog.Logger
}

type service struct {
	repo   Repository
	logger zerolog.Logger
}

// NewService builds a rating service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	return &service{
		repo:   params.Repo,
		logger: params.Logger,
	}, nil
}

// Rate upserts the caller's score for a service. A repeat call replaces the
// previous stars rather than adding a second row.
func (s *service) Rate(ctx context.Context, userID, serviceID uuid.UUID, stars int) (*RatingView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if stars < minStars || stars > maxStars {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("stars must be between %d and %d", minStars, maxStars))
	}

	if _, err := s.repo.FindService(ctx, serviceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup service")
	}

	rating := &models.Rating{
		UserID:    userID,
		ServiceID: serviceID,
		Stars:     stars,
	}
	if err := s.repo.Upsert(ctx, rating); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store rating")
	}

	s.logger.Debug().
		Str("user_id", userID.String()).
		Str("service_id", serviceID.String()).
		Int("stars", stars).
		Msg("rating recorded")

	return &RatingView{
		ServiceID: serviceID,
		Stars:     stars,
		UpdatedAt: rating.UpdatedAt,
	}, nil
}

func (s *service) GetMine(ctx context.Context, userID, serviceID uuid.UUID) (*RatingView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	rating, err := s.repo.Find(ctx, userID, serviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "rating not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup rating")
	}

	return &RatingView{
		ServiceID: rating.ServiceID,
		Stars:     rating.Stars,
		UpdatedAt: rating.UpdatedAt,
	}, nil
}
