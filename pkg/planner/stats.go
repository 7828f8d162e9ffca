package planner

// Stats aggregates plan counts by status over the current store contents
type Stats struct {
	TotalPlans     int `json:"total_plans"`
	PendingPlans   int `json:"pending_plans"`
	ApprovedPlans  int `json:"approved_plans"`
	RejectedPlans  int `json:"rejected_plans"`
	ExecutingPlans int `json:"executing_plans"`
	CompletedPlans int `json:"completed_plans"`
	FailedPlans    int `json:"failed_plans"`
}

// Stats scans the store and returns fresh counts; nothing is cached
func (e *Engine) Stats() Stats {
	stats := Stats{}
	for _, plan := range e.store.List() {
		stats.TotalPlans++
		switch plan.Status {
		case PlanStatusPending:
			stats.PendingPlans++
		case PlanStatusApproved:
			stats.ApprovedPlans++
		case PlanStatusRejected:
			stats.RejectedPlans++
		case PlanStatusExecuting:
			stats.ExecutingPlans++
		case PlanStatusCompleted:
			stats.CompletedPlans++
		case PlanStatusFailed:
			stats.FailedPlans++
		}
	}
	return stats
}
