package models

// Requests for dashboard HTTP endpoints. Defined in domain for consistency and reuse.

type DashboardRequest struct {
	Range  string `query:"range" json:"range" validate:"omitempty,timeframe"`
	Policy string `query:"policy" json:"policy" validate:"omitempty,oneof=every_tick on_change"`
}

type HistoryRequest struct {
	Since string `query:"since" json:"since"`
	Limit int    `query:"limit" json:"limit" default:"500" validate:"gte=1,lte=10000"`
}

type RefreshRequest struct {
	Range string `query:"range" json:"range" validate:"omitempty,timeframe"`
}
