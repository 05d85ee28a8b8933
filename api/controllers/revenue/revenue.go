package revenue

import (
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/marketplace-backend/api/controllers/surface"
	"github.com/angelmondragon/marketplace-backend/api/responses"
	"github.com/angelmondragon/marketplace-backend/api/validators"
	internalorders "github.com/angelmondragon/marketplace-backend/internal/orders"
	internalrevenue "github.com/angelmondragon/marketplace-backend/internal/revenue"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
)

const dayLayout = "2006-01-02"

// Clock lets tests pin "today".
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// OrdersForDate counts orders created on ?date (default today, UTC).
func OrdersForDate(svc internalrevenue.Service, clock Clock, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := surface.Resolve(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sellerID, err := surface.SellerFilter(r, sc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		day, err := parseDay(r, clock.now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		count, err := svc.CountOrdersForDate(r.Context(), day, sellerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, count)
	}
}

// SalesForDate sums total_amount for orders created on ?date.
func SalesForDate(svc internalrevenue.Service, clock Clock, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := surface.Resolve(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sellerID, err := surface.SellerFilter(r, sc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		day, err := parseDay(r, clock.now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		total, err := svc.TotalSalesForDate(r.Context(), day, sellerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, total)
	}
}

// DaySummary reports one seller's business day, matched on the order date.
func DaySummary(svc internalrevenue.Service, clock Clock, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := surface.Resolve(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sellerID, err := surface.RequireSeller(r, sc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		date := validators.ParseQueryString(r, "date", 10)
		if date == "" {
			date = internalorders.FormatDate(clock.now())
		}

		summary, err := svc.SellerDaySummary(r.Context(), sellerID, date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

func MonthlyRevenue(svc internalrevenue.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := surface.Resolve(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sellerID, err := surface.SellerFilter(r, sc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		year, err := validators.ParseURLYear(r, "year")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		months, err := svc.MonthlyRevenue(r.Context(), year, sellerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, months)
	}
}

func MonthlyOrders(svc internalrevenue.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := surface.Resolve(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sellerID, err := surface.SellerFilter(r, sc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		year, err := validators.ParseURLYear(r, "year")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		months, err := svc.MonthlyOrderCounts(r.Context(), year, sellerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, months)
	}
}

func LastSevenDays(svc internalrevenue.Service, clock Clock, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := surface.Resolve(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sellerID, err := surface.SellerFilter(r, sc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		days, err := svc.LastSevenDaysRevenue(r.Context(), sellerID, clock.now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, days)
	}
}

// Dashboard returns the seller home screen counters.
func Dashboard(svc internalrevenue.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := surface.Resolve(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sellerID, err := surface.RequireSeller(r, sc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		counts, err := svc.DashboardCounts(r.Context(), sellerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, counts)
	}
}

// Platform returns the admin home screen counters.
func Platform(svc internalrevenue.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := surface.Resolve(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !sc.IsAdmin() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "admin access required"))
			return
		}

		counts, err := svc.PlatformCounts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, counts)
	}
}

func parseDay(r *http.Request, fallback time.Time) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("date"))
	if raw == "" {
		return internalrevenue.DayStart(fallback), nil
	}
	day, err := time.Parse(dayLayout, raw)
	if err != nil {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "date must be YYYY-MM-DD").
			WithDetails(map[string]string{"date": raw})
	}
	return day, nil
}
