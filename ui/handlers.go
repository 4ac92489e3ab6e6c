package ui

import (
	stderrors "errors"
	"net/http"
	"strings"

	"exampulse/app"
	"exampulse/domain/stats"
	"exampulse/domain/student"
	"exampulse/internal/errors"
	"exampulse/internal/report"
	"exampulse/internal/session"
	"exampulse/internal/store"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleHealth(c *gin.Context) {
	st := s.dashboards.Store().Status()
	status := http.StatusOK
	if st.State == store.StateFailed {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"status":   st.State,
		"store":    st,
		"sessions": s.dashboards.Sessions().Len(),
	})
}

func (s *Server) handleStudents(c *gin.Context) {
	_, v, ok := s.applyQueryFilter(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"filter":   v.Filter,
		"count":    len(v.Records),
		"students": nonNil(v.Records),
	})
}

func (s *Server) handleDashboard(c *gin.Context) {
	filter, ok := s.queryFilter(c)
	if !ok {
		return
	}
	sess := sessionFrom(c)
	if filter == nil {
		f := sess.Filter()
		filter = &f
	}
	d, err := s.dashboards.BuildSession(c.Request.Context(), sess, *filter)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d.Display(s.precision))
}

func (s *Server) handleSummaries(c *gin.Context) {
	sess, v, ok := s.applyQueryFilter(c)
	if !ok {
		return
	}
	group := student.AttributeParentalEducation
	if raw := c.Query("groupBy"); raw != "" {
		parsed, err := student.ParseAttribute(raw)
		if err != nil {
			s.fail(c, invalidQuery("groupBy", err))
			return
		}
		group = parsed
	}
	subjects, ok := s.querySubjects(c)
	if !ok {
		return
	}

	summaries, err := sess.Summaries(v, group, subjects)
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]stats.GroupSummary, len(summaries))
	for i, g := range summaries {
		out[i] = g.Rounded(s.precision)
	}
	c.JSON(http.StatusOK, gin.H{
		"filter":    v.Filter,
		"groupBy":   group,
		"summaries": out,
	})
}

func (s *Server) handleCorrelations(c *gin.Context) {
	sess, v, ok := s.applyQueryFilter(c)
	if !ok {
		return
	}
	subjects, ok := s.querySubjects(c)
	if !ok {
		return
	}
	m, err := sess.Correlations(v, subjects)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"filter":       v.Filter,
		"correlations": m.Rounded(s.precision),
	})
}

func (s *Server) handleKPIs(c *gin.Context) {
	sess, v, ok := s.applyQueryFilter(c)
	if !ok {
		return
	}
	kpis, err := sess.KPIs(v, student.Subjects)
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]stats.KPI, len(kpis))
	for i, k := range kpis {
		out[i] = k.Rounded(app.KPIPrecision)
	}
	c.JSON(http.StatusOK, gin.H{"filter": v.Filter, "kpis": out})
}

func (s *Server) handleGender(c *gin.Context) {
	sess, v, ok := s.applyQueryFilter(c)
	if !ok {
		return
	}
	subjects, ok := s.querySubjects(c)
	if !ok {
		return
	}
	genders, err := sess.Genders(v, subjects)
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]stats.GenderAverages, len(genders))
	for i, g := range genders {
		out[i] = g.Rounded(app.KPIPrecision)
	}
	c.JSON(http.StatusOK, gin.H{"filter": v.Filter, "genderComparison": out})
}

func (s *Server) handleDemographics(c *gin.Context) {
	sess, v, ok := s.applyQueryFilter(c)
	if !ok {
		return
	}
	d, err := sess.Demographics(v)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"filter": v.Filter, "demographics": d})
}

func (s *Server) handleSession(c *gin.Context) {
	c.JSON(http.StatusOK, sessionFrom(c).Info())
}

func (s *Server) handleReload(c *gin.Context) {
	if _, err := s.dashboards.Store().Retry(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.dashboards.Store().Status())
}

func (s *Server) handleReport(c *gin.Context) {
	filter, ok := s.queryFilter(c)
	if !ok {
		return
	}
	if filter == nil {
		filter = &student.NoFilter
	}
	d, err := s.dashboards.Build(c.Request.Context(), *filter)
	if err != nil {
		s.fail(c, err)
		return
	}
	if strings.EqualFold(c.Query("format"), "md") {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown(d, s.precision)))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", report.Page(d, s.precision))
}

// queryFilter reads ?filter=attr:value or ?education=value. A nil filter
// means the request did not ask for one.
func (s *Server) queryFilter(c *gin.Context) (*student.Filter, bool) {
	var (
		f   student.Filter
		err error
	)
	switch {
	case c.Query("filter") != "":
		f, err = student.ParseFilter(c.Query("filter"))
	case c.Query("education") != "":
		f, err = student.NewFilter(student.AttributeParentalEducation, c.Query("education"))
	default:
		return nil, true
	}
	if err != nil {
		s.fail(c, invalidQuery("filter", err))
		return nil, false
	}
	return &f, true
}

// applyQueryFilter moves the session to the requested filter, if any, and
// returns the view the rest of the request computes from
func (s *Server) applyQueryFilter(c *gin.Context) (*session.Session, session.View, bool) {
	sess := sessionFrom(c)
	filter, ok := s.queryFilter(c)
	if !ok {
		return nil, session.View{}, false
	}

	var (
		v   session.View
		err error
	)
	if filter != nil {
		v, err = sess.Apply(c.Request.Context(), *filter)
	} else {
		v, err = sess.Current(c.Request.Context())
	}
	if err != nil {
		s.fail(c, err)
		return nil, session.View{}, false
	}
	return sess, v, true
}

func (s *Server) querySubjects(c *gin.Context) ([]student.Subject, bool) {
	raw := c.Query("subjects")
	if raw == "" {
		return student.Subjects, true
	}
	subjects, err := student.ParseSubjects(strings.Split(raw, ","))
	if err != nil {
		s.fail(c, invalidQuery("subjects", err))
		return nil, false
	}
	return subjects, true
}

func invalidQuery(param string, err error) error {
	return &errors.AppError{Code: errors.CodeInvalidInput, Message: "invalid " + param, Cause: err}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError && !stderrors.Is(err, c.Request.Context().Err()) {
		s.logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}

func nonNil(records []student.Record) []student.Record {
	if records == nil {
		return []student.Record{}
	}
	return records
}
