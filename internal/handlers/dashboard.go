package handlers

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"hospital-portal/internal/models"
	"hospital-portal/internal/reports"
	"hospital-portal/internal/utils"
)

// DashboardHandler serves the dashboard summaries.
type DashboardHandler struct{}

func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

// DoctorDashboard is the doctor's home page data.
type DoctorDashboard struct {
	Stats    models.DoctorStats `json:"stats"`
	Overview reports.Overview   `json:"overview"`
}

// GetAdminOverview summarizes every appointment with the directory headcounts.
func (h *DashboardHandler) GetAdminOverview(c *gin.Context) {
	st, ok := currentStore(c)
	if !ok {
		return
	}
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error { return st.Appointments.Fetch(ctx) })
	g.Go(func() error { return st.Doctors.Fetch(ctx) })
	g.Go(func() error { return st.Patients.Fetch(ctx) })
	if err := g.Wait(); err != nil {
		utils.RespondError(c, err)
		return
	}

	overview := reports.Summarize(st.Appointments.List(), st.Now()).
		WithDirectory(st.Doctors.List(), st.Patients.List())
	utils.Success(c, "Dashboard retrieved successfully", overview)
}

// GetDoctorDashboard combines the backend's stats with a local summary of the
// doctor's own appointments.
func (h *DashboardHandler) GetDoctorDashboard(c *gin.Context) {
	st, ok := currentStore(c)
	if !ok {
		return
	}
	var stats models.DoctorStats
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		stats, err = st.Doctors.FetchStats(ctx)
		return err
	})
	g.Go(func() error { return st.Appointments.Fetch(ctx) })
	if err := g.Wait(); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Dashboard retrieved successfully", DoctorDashboard{
		Stats:    stats,
		Overview: reports.Summarize(st.Appointments.List(), st.Now()),
	})
}
