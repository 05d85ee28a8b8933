package orders

import (
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
)

const (
	isoDateLayout    = "2006-01-02"
	storedDateLayout = "01/02/2006"
)

// NormalizeDate converts YYYY-MM-DD to the stored MM/DD/YYYY form. Values
// already in the stored form are returned unchanged.
func NormalizeDate(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if t, err := time.Parse(isoDateLayout, value); err == nil {
		return t.Format(storedDateLayout), nil
	}
	if t, err := time.Parse(storedDateLayout, value); err == nil {
		return t.Format(storedDateLayout), nil
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation, "date must be YYYY-MM-DD or MM/DD/YYYY").
		WithDetails(map[string]string{"date": raw})
}

// FormatDate renders t as a stored calendar date.
func FormatDate(t time.Time) string {
	return t.UTC().Format(storedDateLayout)
}
