package certificate

import "context"

// Repository reads certificate records from the view.
type Repository interface {
	// FindByDateRange returns every record whose DateColumn falls inside r,
	// with DateColumn values normalized to plain dates.
	FindByDateRange(ctx context.Context, r DateRange) (ResultSet, error)
}
