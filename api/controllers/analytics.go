package controllers

import (
	"net/http"

	"github.com/davegutierrez/shoplite-backend/api/responses"
	"github.com/davegutierrez/shoplite-backend/api/validators"
	"github.com/davegutierrez/shoplite-backend/internal/analytics"
	apperrors "github.com/davegutierrez/shoplite-backend/pkg/errors"
	"github.com/davegutierrez/shoplite-backend/pkg/logger"
)

func analyticsRange(r *http.Request) (analytics.DateRange, error) {
	start, err := validators.ParseQueryDate(r, "start")
	if err != nil {
		return analytics.DateRange{}, err
	}
	end, err := validators.ParseQueryDate(r, "end")
	if err != nil {
		return analytics.DateRange{}, err
	}
	return analytics.DateRange{Start: start, End: end}, nil
}

// AnalyticsSales returns the day-by-day sales report for a date range.
func AnalyticsSales(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, apperrors.New(apperrors.CodeInternal, "analytics service unavailable"))
			return
		}

		rng, err := analyticsRange(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.Sales(r.Context(), rng)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// AnalyticsTopProducts returns the best sellers for a date range.
func AnalyticsTopProducts(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, apperrors.New(apperrors.CodeInternal, "analytics service unavailable"))
			return
		}

		rng, err := analyticsRange(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		// Zero lets the service apply its own default.
		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.TopProducts(r.Context(), rng, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// AnalyticsLowStock lists active products at or below their minimum stock.
func AnalyticsLowStock(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, apperrors.New(apperrors.CodeInternal, "analytics service unavailable"))
			return
		}

		items, err := svc.LowStock(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}
