package dto

// UserStatsResponse aggregates one submitter's project counts.
type UserStatsResponse struct {
	UserID        string         `json:"userId"`
	TotalProjects int            `json:"totalProjects"`
	ByStatus      map[string]int `json:"byStatus"`
	TotalDrawings int            `json:"totalDrawings"`
	PendingReview int            `json:"pendingReview"`
}

// AdminStatsResponse aggregates system-wide workflow figures.
type AdminStatsResponse struct {
	TotalProjects     int            `json:"totalProjects"`
	ByStatus          map[string]int `json:"byStatus"`
	TotalDrawings     int            `json:"totalDrawings"`
	TotalUsers        int            `json:"totalUsers"`
	PendingReview     int            `json:"pendingReview"`
	ReviewedThisMonth int            `json:"reviewedThisMonth"`
	AvgReviewHours    float64        `json:"avgReviewHours"`
}
