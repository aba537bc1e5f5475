// Package reports computes dashboard aggregates from cached appointments.
package reports

import (
	"math"
	"sort"
	"strconv"
	"time"

	"hospital-portal/internal/models"
)

// DepartmentCount is the number of appointments booked in one department.
type DepartmentCount struct {
	Department models.Ref `json:"department"`
	Count      int        `json:"count"`
}

// Overview is the admin dashboard summary.
type Overview struct {
	TotalAppointments int                              `json:"totalAppointments"`
	ByStatus          map[models.AppointmentStatus]int `json:"byStatus"`
	CompletionRate    float64                          `json:"completionRate"`
	CancellationRate  float64                          `json:"cancellationRate"`
	UniquePatients    int                              `json:"uniquePatients"`
	Upcoming          int                              `json:"upcoming"`
	Today             int                              `json:"today"`
	ThisWeek          int                              `json:"thisWeek"`
	ThisMonth         int                              `json:"thisMonth"`
	AveragePerDay     float64                          `json:"averagePerDay"`
	Monthly           []models.MonthlyPoint            `json:"monthly"`
	Hours             []models.HourCount               `json:"timeSlotDistribution"`
	Departments       []DepartmentCount                `json:"departments"`
	TotalPatients     int                              `json:"totalPatients"`
	TotalDoctors      int                              `json:"totalDoctors"`
	PendingDoctors    int                              `json:"pendingDoctors"`
}

// Summarize aggregates appointments as of now. Calendar periods are taken in
// now's location; weeks start on Monday.
func Summarize(appts []models.Appointment, now time.Time) Overview {
	o := Overview{
		TotalAppointments: len(appts),
		ByStatus: map[models.AppointmentStatus]int{
			models.StatusPending:   0,
			models.StatusConfirmed: 0,
			models.StatusCompleted: 0,
			models.StatusCancelled: 0,
		},
		Monthly:     []models.MonthlyPoint{},
		Hours:       []models.HourCount{},
		Departments: []DepartmentCount{},
	}

	loc := now.Location()
	today := startOfDay(now)
	weekStart := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)

	patients := map[string]bool{}
	days := map[models.DayKey]bool{}
	months := map[models.MonthKey]*models.MonthlyPoint{}
	hours := map[int]int{}
	depts := map[string]*DepartmentCount{}

	for _, a := range appts {
		o.ByStatus[a.Status]++
		if a.Patient.ID != "" {
			patients[a.Patient.ID] = true
		}
		if !a.AppointmentDate.Before(now) {
			o.Upcoming++
		}

		at := a.AppointmentDate.In(loc)
		day := startOfDay(at)
		if day.Equal(today) {
			o.Today++
		}
		if !day.Before(weekStart) && day.Before(weekStart.AddDate(0, 0, 7)) {
			o.ThisWeek++
		}
		if !day.Before(monthStart) && day.Before(monthStart.AddDate(0, 1, 0)) {
			o.ThisMonth++
		}
		days[models.DayKey{Year: at.Year(), Month: int(at.Month()), Day: at.Day()}] = true

		mk := models.MonthKey{Year: at.Year(), Month: int(at.Month())}
		point, ok := months[mk]
		if !ok {
			point = &models.MonthlyPoint{ID: mk}
			months[mk] = point
		}
		point.Total++
		switch a.Status {
		case models.StatusCompleted:
			point.Completed++
		case models.StatusCancelled:
			point.Cancelled++
		}

		hours[slotHour(a, at)]++

		if a.Department.ID != "" {
			dc, ok := depts[a.Department.ID]
			if !ok {
				dc = &DepartmentCount{Department: a.Department}
				depts[a.Department.ID] = dc
			}
			if dc.Department.Name == "" {
				dc.Department.Name = a.Department.Name
			}
			dc.Count++
		}
	}

	o.UniquePatients = len(patients)
	o.CompletionRate = percent(o.ByStatus[models.StatusCompleted], o.TotalAppointments)
	o.CancellationRate = percent(o.ByStatus[models.StatusCancelled], o.TotalAppointments)
	if len(days) > 0 {
		o.AveragePerDay = round1(float64(o.TotalAppointments) / float64(len(days)))
	}

	for _, p := range months {
		o.Monthly = append(o.Monthly, *p)
	}
	sort.Slice(o.Monthly, func(i, j int) bool {
		a, b := o.Monthly[i].ID, o.Monthly[j].ID
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Month < b.Month
	})

	for h, n := range hours {
		o.Hours = append(o.Hours, models.HourCount{Hour: h, Count: n})
	}
	sort.Slice(o.Hours, func(i, j int) bool { return o.Hours[i].Hour < o.Hours[j].Hour })

	for _, dc := range depts {
		o.Departments = append(o.Departments, *dc)
	}
	sort.Slice(o.Departments, func(i, j int) bool {
		if o.Departments[i].Count != o.Departments[j].Count {
			return o.Departments[i].Count > o.Departments[j].Count
		}
		return o.Departments[i].Department.ID < o.Departments[j].Department.ID
	})

	return o
}

// WithDirectory adds headcounts from the doctor and patient lists.
func (o Overview) WithDirectory(doctors []models.Doctor, patients []models.Patient) Overview {
	o.TotalDoctors = len(doctors)
	o.TotalPatients = len(patients)
	o.PendingDoctors = 0
	for _, d := range doctors {
		if !d.IsValidated {
			o.PendingDoctors++
		}
	}
	return o
}

// slotHour prefers the booked slot time over the timestamp's clock.
func slotHour(a models.Appointment, at time.Time) int {
	if models.ValidSlotTime(a.Time) {
		if h, err := strconv.Atoi(a.Time[:2]); err == nil {
			return h
		}
	}
	return at.Hour()
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(n) * 100 / float64(total))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
