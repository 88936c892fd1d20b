package web

import (
	"eara_connect_portal/internal/app"

	"github.com/gin-gonic/gin"
)

var timeFilters = []string{"1month", "3months", "6months", "1year"}

type commissionerView struct {
	*app.CommissionerDashboard
	TimeFilter  string
	TimeFilters []string
}

func (s *Server) handleDashboard(c *gin.Context) {
	s.redirect(c, dashboardPath(*currentUser(c)))
}

func (s *Server) handleChairDashboard(c *gin.Context) {
	d := s.svc.Dashboards.ForChair(c.Request.Context(), *currentUser(c))
	s.render(c, "dashboard_chair", "Chair dashboard", d)
}

func (s *Server) handleHODDashboard(c *gin.Context) {
	d := s.svc.Dashboards.ForHOD(c.Request.Context(), *currentUser(c))
	s.render(c, "dashboard_hod", "Head of Delegation dashboard", d)
}

func (s *Server) handleCommissionerDashboard(c *gin.Context) {
	filter := c.DefaultQuery("time", app.DefaultTimeFilter)
	known := false
	for _, f := range timeFilters {
		known = known || f == filter
	}
	if !known {
		filter = app.DefaultTimeFilter
	}
	d := s.svc.Dashboards.ForCommissioner(c.Request.Context(), *currentUser(c), filter)
	s.render(c, "dashboard_commissioner", "Commissioner General dashboard", commissionerView{
		CommissionerDashboard: d,
		TimeFilter:            filter,
		TimeFilters:           timeFilters,
	})
}

func (s *Server) handleMemberDashboard(c *gin.Context) {
	d := s.svc.Dashboards.ForMember(c.Request.Context(), *currentUser(c))
	s.render(c, "dashboard_member", "My subcommittee", d)
}

func (s *Server) handleSecretaryDashboard(c *gin.Context) {
	d := s.svc.Dashboards.ForSecretary(c.Request.Context(), *currentUser(c))
	s.render(c, "dashboard_secretary", "Secretariat dashboard", d)
}
