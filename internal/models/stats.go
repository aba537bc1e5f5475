package models

// MonthKey identifies a calendar month in aggregate series.
type MonthKey struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// DayKey identifies a calendar day in aggregate series.
type DayKey struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// MonthlyPoint is one month of appointment activity.
type MonthlyPoint struct {
	ID        MonthKey `json:"_id"`
	Total     int      `json:"total"`
	Completed int      `json:"completed"`
	Cancelled int      `json:"cancelled"`
	Revenue   float64  `json:"revenue"`
}

// DailyPoint is one day of appointment activity.
type DailyPoint struct {
	ID        DayKey `json:"_id"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Cancelled int    `json:"cancelled"`
}

// HourCount counts appointments starting in one hour of the day.
type HourCount struct {
	Hour  int `json:"_id"`
	Count int `json:"count"`
}

// DoctorStats is the doctor dashboard payload computed by the backend.
type DoctorStats struct {
	Overview struct {
		TotalAppointments     int     `json:"totalAppointments"`
		ConfirmedAppointments int     `json:"confirmedAppointments"`
		CompletedAppointments int     `json:"completedAppointments"`
		CancelledAppointments int     `json:"cancelledAppointments"`
		TotalRevenue          float64 `json:"totalRevenue"`
	} `json:"overview"`
	GraphData struct {
		Monthly              []MonthlyPoint `json:"monthly"`
		Daily                []DailyPoint   `json:"daily"`
		TimeSlotDistribution []HourCount    `json:"timeSlotDistribution"`
	} `json:"graphData"`
	PatientAnalytics struct {
		TotalUniquePatients int      `json:"totalUniquePatients"`
		AverageAge          *float64 `json:"averageAge"`
	} `json:"patientAnalytics"`
	PeriodComparisons struct {
		ThisMonth int `json:"thisMonth"`
		ThisWeek  int `json:"thisWeek"`
		Today     int `json:"today"`
	} `json:"periodComparisons"`
	PerformanceMetrics struct {
		CompletionRate            string `json:"completionRate"`
		CancellationRate          string `json:"cancellationRate"`
		AverageAppointmentsPerDay string `json:"averageAppointmentsPerDay"`
	} `json:"performanceMetrics"`
}
