package forecast

// Method names a forecasting strategy.
type Method string

const (
	MethodInsufficient Method = "insufficient"
	MethodBootstrap    Method = "bootstrap"
	MethodTrend        Method = "trend"
	MethodStatistical  Method = "statistical"
	// MethodAdvanced is selected for the deepest history and currently runs
	// the statistical generator.
	MethodAdvanced Method = "advanced"
)

// Selection is the outcome of SelectMethod.
type Selection struct {
	Method      Method `json:"method"`
	Tier        int    `json:"tier"`
	DataDays    int    `json:"data_days"`
	TotalPoints int    `json:"total_points"`
}

// Sufficient reports whether a forecast can be produced.
func (s Selection) Sufficient() bool {
	return s.Method != MethodInsufficient
}

// SelectMethod picks a strategy from the depth and density of records.
func SelectMethod(records []Record) Selection {
	sel := Selection{DataDays: distinctDates(records), TotalPoints: len(records)}
	switch {
	case sel.DataDays < 7 || sel.TotalPoints < 10:
		sel.Method, sel.Tier = MethodInsufficient, 0
	case sel.DataDays < 30:
		sel.Method, sel.Tier = MethodBootstrap, 1
	case sel.DataDays < 90:
		sel.Method, sel.Tier = MethodTrend, 2
	case sel.DataDays < 180:
		sel.Method, sel.Tier = MethodStatistical, 3
	default:
		sel.Method, sel.Tier = MethodAdvanced, 4
	}
	return sel
}
