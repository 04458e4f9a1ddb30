package services

import (
	"fmt"
	"time"

	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/models"
)

// Period is a calendar month.
type Period struct {
	Year  int
	Month time.Month
}

// NewPeriod validates a month (1-12) and year (1-9999).
func NewPeriod(year, month int) (Period, error) {
	fields := map[string]string{}
	if month < 1 || month > 12 {
		fields["month"] = "Must be between 1 and 12"
	}
	if year < 1 || year > 9999 {
		fields["year"] = "Must be between 1 and 9999"
	}
	if len(fields) > 0 {
		return Period{}, apperrors.WithFields(apperrors.ErrInvalidInput, "Invalid period", fields)
	}
	return Period{Year: year, Month: time.Month(month)}, nil
}

// CurrentPeriod returns the month containing now, in UTC.
func CurrentPeriod(now time.Time) Period {
	now = now.UTC()
	return Period{Year: now.Year(), Month: now.Month()}
}

// Start returns the first day of the period.
func (p Period) Start() models.Date {
	return models.NewDate(p.Year, p.Month, 1)
}

// End returns the last day of the period.
func (p Period) End() models.Date {
	return p.Start().MonthEnd()
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}
