package analytics

// FunnelViolation is one adjacent stage pair where the reached-user count
// grew instead of shrinking.
type FunnelViolation struct {
	Step             string `json:"step"`
	StepOrder        int    `json:"step_order"`
	UsersReached     int    `json:"users_reached"`
	PrevStep         string `json:"prev_step"`
	PrevUsersReached int    `json:"prev_users_reached"`
}

// CheckFunnel validates that users_reached never increases from one stage to
// the next when rows are ordered by step_order. Every violating pair is
// reported; an empty result means the funnel is consistent. This is a data
// quality gate: violations are reported to the caller, never raised, since
// partial loads can legitimately look non-monotonic.
func CheckFunnel(metrics []FunnelStageMetric) []FunnelViolation {
	var violations []FunnelViolation

	for i := 1; i < len(metrics); i++ {
		prev := metrics[i-1]
		curr := metrics[i]
		if curr.UsersReached > prev.UsersReached {
			violations = append(violations, FunnelViolation{
				Step:             curr.Step,
				StepOrder:        curr.StepOrder,
				UsersReached:     curr.UsersReached,
				PrevStep:         prev.Step,
				PrevUsersReached: prev.UsersReached,
			})
		}
	}

	return violations
}
