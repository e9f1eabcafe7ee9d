package models

// Timeframe is a reporting window relative to today.
type Timeframe string

const (
	TimeframeDay   Timeframe = "day"
	TimeframeWeek  Timeframe = "week"
	TimeframeMonth Timeframe = "month"
)

// IsValid reports whether t is a known timeframe.
func (t Timeframe) IsValid() bool {
	return t == TimeframeDay || t == TimeframeWeek || t == TimeframeMonth
}

// StatsSummary holds the dashboard metrics for one timeframe.
// Count and RevenueEstimate cover every appointment dated in [From, To], canceled ones
// included. RevenueEstimate prices each at today's catalog price for its service name;
// appointments whose service no longer exists under that name add nothing and are counted
// in UnpricedCount instead. PendingCount is not limited to the window.
type StatsSummary struct {
	Timeframe       Timeframe `json:"timeframe"`
	From            string    `json:"from"`
	To              string    `json:"to"`
	Count           int       `json:"count"`
	PendingCount    int       `json:"pending_count"`
	RevenueEstimate float64   `json:"revenue_estimate"`
	UnpricedCount   int       `json:"unpriced_count"`
	TotalClients    int       `json:"total_clients"`
}

// RevenueReportItem is one month of completed revenue.
type RevenueReportItem struct {
	Month string  `json:"month"` // YYYY-MM
	Value float64 `json:"value"`
}

// ServiceReportItem counts appointments per service name.
type ServiceReportItem struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ClientRetentionReport splits linked clients into recurring and first-time, in percent.
type ClientRetentionReport struct {
	Recurring int `json:"recurring"`
	New       int `json:"new"`
	Clients   int `json:"clients"`
}

// AppointmentReportItem counts appointments of every status booked for one month.
type AppointmentReportItem struct {
	Month string `json:"month"` // YYYY-MM
	Count int    `json:"count"`
}

// ReportType selects the metric a ReportSummary is built from.
type ReportType string

const (
	ReportTypeRevenue      ReportType = "revenue"
	ReportTypeAppointments ReportType = "appointments"
)

// IsValid reports whether t is a known report type.
func (t ReportType) IsValid() bool {
	return t == ReportTypeRevenue || t == ReportTypeAppointments
}

// ReportPeriod is a rolling window of days ending today.
type ReportPeriod string

const (
	ReportPeriodWeek    ReportPeriod = "week"
	ReportPeriodMonth   ReportPeriod = "month"
	ReportPeriodQuarter ReportPeriod = "quarter"
	ReportPeriodYear    ReportPeriod = "year"
)

// Days returns the window length, or 0 for an unknown period.
func (p ReportPeriod) Days() int {
	switch p {
	case ReportPeriodWeek:
		return 7
	case ReportPeriodMonth:
		return 30
	case ReportPeriodQuarter:
		return 90
	case ReportPeriodYear:
		return 365
	}
	return 0
}

// ReportSummary compares the current period with the one right before it.
// For revenue, Total is completed revenue and AvgValue the average priced ticket.
// For appointments, Total is the number booked and AvgValue the average per linked client.
// GrowthRate is a percentage and is 0 when the previous period is empty.
// OccupationRate is the share of SlotsPerDay slots filled over the current period, capped at 100.
type ReportSummary struct {
	Type           ReportType   `json:"report_type"`
	Period         ReportPeriod `json:"time_frame"`
	From           string       `json:"from"`
	To             string       `json:"to"`
	Total          float64      `json:"total"`
	PreviousTotal  float64      `json:"previous_total"`
	GrowthRate     float64      `json:"growth_rate"`
	AvgValue       float64      `json:"avg_value"`
	OccupationRate float64      `json:"occupation_rate"`
}

// SlotsPerDay is the estimated appointment capacity of one day.
const SlotsPerDay = 8
