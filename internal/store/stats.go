package store

import "time"

// DashboardStats summarizes stored expenses for the admin dashboard.
type DashboardStats struct {
	TotalToday   float64      `json:"totalToday"`
	TotalMonth   float64      `json:"totalMonth"`
	TotalGeneral float64      `json:"totalGeneral"`
	DailyData    []DailyTotal `json:"dailyData"`
}

// DailyTotal is one point of the dashboard's daily series.
type DailyTotal struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

const dailyDateFormat = "2006-01-02"

// Stats aggregates totals for today, the current month and overall, plus a
// per-day series covering the last days days (oldest first, zero-filled).
// Aggregation keys off each record's creation timestamp in UTC.
func (s *DB) Stats(now time.Time, days int) (*DashboardStats, error) {
	expenses, err := s.ListExpenses()
	if err != nil {
		return nil, err
	}

	now = now.UTC()
	today := now.Format(dailyDateFormat)
	month := now.Format("2006-01")

	daily := make(map[string]float64, days)
	for i := 0; i < days; i++ {
		daily[now.AddDate(0, 0, -i).Format(dailyDateFormat)] = 0
	}

	stats := &DashboardStats{}
	for _, e := range expenses {
		created, err := time.Parse(time.RFC3339, e.CreatedAt)
		if err != nil {
			// Skip unparseable timestamps rather than failing the dashboard.
			continue
		}
		day := created.UTC().Format(dailyDateFormat)

		stats.TotalGeneral += e.Amount
		if day == today {
			stats.TotalToday += e.Amount
		}
		if created.UTC().Format("2006-01") == month {
			stats.TotalMonth += e.Amount
		}
		if _, ok := daily[day]; ok {
			daily[day] += e.Amount
		}
	}

	stats.DailyData = make([]DailyTotal, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format(dailyDateFormat)
		stats.DailyData = append(stats.DailyData, DailyTotal{Date: date, Amount: daily[date]})
	}

	return stats, nil
}
