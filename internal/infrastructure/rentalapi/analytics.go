package rentalapi

import "context"

// AnalyticsAPI covers the admin dashboard figures. period is passed through
// as is ("week", "month", "year"); empty lets the backend choose.
type AnalyticsAPI struct{ c *Client }

func (a *AnalyticsAPI) Dashboard(ctx context.Context) (*Result, error) {
	return a.c.get(ctx, "/admin/dashboard/stats", nil, "Failed to fetch dashboard statistics.")
}

func (a *AnalyticsAPI) Revenue(ctx context.Context, period string) (*Result, error) {
	return a.c.get(ctx, "/admin/analytics/revenue", periodQuery(period), "Failed to fetch revenue analytics.")
}

func (a *AnalyticsAPI) Bookings(ctx context.Context, period string) (*Result, error) {
	return a.c.get(ctx, "/admin/analytics/bookings", periodQuery(period), "Failed to fetch booking analytics.")
}

func (a *AnalyticsAPI) Users(ctx context.Context, period string) (*Result, error) {
	return a.c.get(ctx, "/admin/analytics/users", periodQuery(period), "Failed to fetch user analytics.")
}

func (a *AnalyticsAPI) CarUtilization(ctx context.Context) (*Result, error) {
	return a.c.get(ctx, "/admin/analytics/car-utilization", nil, "Failed to fetch car utilization.")
}

func (a *AnalyticsAPI) PopularCars(ctx context.Context) (*Result, error) {
	return a.c.get(ctx, "/admin/analytics/popular-cars", nil, "Failed to fetch popular cars.")
}
