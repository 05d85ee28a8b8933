package referrals

import (
	"net/http"

	"github.com/angelmondragon/marketplace-backend/api/controllers/surface"
	"github.com/angelmondragon/marketplace-backend/api/responses"
	"github.com/angelmondragon/marketplace-backend/api/validators"
	internalreferrals "github.com/angelmondragon/marketplace-backend/internal/referrals"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
	"github.com/angelmondragon/marketplace-backend/pkg/types"
)

// Create records a referral. A pair that already exists is reported as an
// EXIST outcome rather than an error.
func Create(svc internalreferrals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := surface.Resolve(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var input internalreferrals.CreateReferralInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Create(r.Context(), sc, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if result.Status == types.StatusExist {
			responses.WriteOutcome(w, types.StatusExist, "Referral already exists", nil)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result.Referral)
	}
}

func List(svc internalreferrals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := surface.Resolve(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters, err := parseFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), sc, filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// Mine lists referrals made by the calling user.
func Mine(svc internalreferrals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := surface.Resolve(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListForUser(r.Context(), sc.OwnerID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func Get(svc internalreferrals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := surface.Resolve(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParseURLUUID(r, "referralId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		referral, err := svc.Get(r.Context(), sc, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, referral)
	}
}

func Update(svc internalreferrals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := surface.Resolve(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParseURLUUID(r, "referralId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var input internalreferrals.UpdateReferralInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		referral, err := svc.Update(r.Context(), sc, id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, referral)
	}
}

func Delete(svc internalreferrals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := surface.Resolve(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParseURLUUID(r, "referralId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), sc, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"id": id.String()})
	}
}

func parseFilters(r *http.Request) (internalreferrals.ListFilters, error) {
	var filters internalreferrals.ListFilters
	var err error
	if filters.ReferringUserID, err = validators.ParseQueryUUID(r, "referringUserId"); err != nil {
		return filters, err
	}
	if filters.ReferredSellerID, err = validators.ParseQueryUUID(r, "referredSellerId"); err != nil {
		return filters, err
	}
	if filters.Onboarded, err = validators.ParseQueryBool(r, "onboarded"); err != nil {
		return filters, err
	}
	includeDeleted, err := validators.ParseQueryBool(r, "includeDeleted")
	if err != nil {
		return filters, err
	}
	if includeDeleted != nil {
		filters.IncludeDeleted = *includeDeleted
	}
	return filters, nil
}
