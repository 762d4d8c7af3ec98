// Reporting handlers.
//
//   - GET /surveys/{id}/stats    (ETag-aware statistics)
//   - GET /surveys/{id}/export   (csv or xlsx download)
//   - GET /reports               (response counts per survey)
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-survey-backend/internal/services"
)

// HeaderArchiveURL carries the object-store location of an archived export.
const HeaderArchiveURL = "X-Archive-URL"

// StatsService computes survey statistics.
type StatsService interface {
	Version(ctx context.Context, actor services.Actor, surveyID uint) (string, error)
	Get(ctx context.Context, actor services.Actor, surveyID uint) (*services.SurveyStats, error)
}

// ExportService renders response exports.
type ExportService interface {
	Export(ctx context.Context, actor services.Actor, surveyID uint, format string) (*services.ExportFile, error)
}

// ReportService lists response counts.
type ReportService interface {
	List(ctx context.Context, actor services.Actor) ([]services.SurveyReport, error)
}

// ListReportsResponse wraps the report rows.
type ListReportsResponse struct {
	Reports []services.SurveyReport `json:"reports"`
}

// GetStats godoc
// @ID          getStats
// @Summary     Survey statistics
// @Description Counts per choice, numeric summaries and completion figures. Honors If-None-Match.
// @Tags        Reports
// @Produce     json
// @Security    BearerAuth
// @Param       id             path    int     true   "Survey ID"
// @Param       If-None-Match  header  string  false  "ETag from a previous response"
// @Success     200  {object}  services.SurveyStats
// @Success     304  {string}  string  "Not Modified"
// @Failure     403  {object}  handlers.ErrorResponse  "Not the owner"
// @Failure     404  {object}  handlers.ErrorResponse  "Survey not found"
// @Router      /surveys/{id}/stats [get]
func (h *Handlers) GetStats(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	ctx, who := c.Request.Context(), actor(c)

	version, err := h.svc.Stats.Version(ctx, who, id)
	if err != nil {
		serviceError(c, err)
		return
	}
	if notModified(c, "stats", version) {
		return
	}
	st, err := h.svc.Stats.Get(ctx, who, id)
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, st)
}

// contentDisposition builds an attachment header with an ASCII fallback and
// the RFC 5987 UTF-8 name.
func contentDisposition(filename string) string {
	ascii := strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, filename)
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, ascii, url.PathEscape(filename))
}

// ExportResponses godoc
// @ID          exportResponses
// @Summary     Export submitted responses
// @Description One row per submitted response and one column per question. CSV carries a UTF-8 BOM.
// @Tags        Reports
// @Produce     text/csv
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security    BearerAuth
// @Param       id      path   int     true   "Survey ID"
// @Param       format  query  string  false  "csv or xlsx"  Enums(csv, xlsx) default(csv)
// @Success     200  {file}    file
// @Header      200  {string}  X-Archive-URL  "Set when the export was archived"
// @Failure     400  {object}  handlers.ErrorResponse  "Unsupported format"
// @Failure     404  {object}  handlers.ErrorResponse  "Survey not found or no submitted responses"
// @Router      /surveys/{id}/export [get]
func (h *Handlers) ExportResponses(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	f, err := h.svc.Export.Export(c.Request.Context(), actor(c), id, c.Query("format"))
	if err != nil {
		serviceError(c, err)
		return
	}
	c.Header("Content-Disposition", contentDisposition(f.Filename))
	if f.URL != "" {
		c.Header(HeaderArchiveURL, f.URL)
	}
	c.Data(http.StatusOK, f.ContentType, f.Data)
}

// ListReports godoc
// @ID          listReports
// @Summary     Response counts per survey
// @Tags        Reports
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  handlers.ListReportsResponse
// @Router      /reports [get]
func (h *Handlers) ListReports(c *gin.Context) {
	rows, err := h.svc.Reports.List(c.Request.Context(), actor(c))
	if err != nil {
		serviceError(c, err)
		return
	}
	if rows == nil {
		rows = []services.SurveyReport{}
	}
	ok(c, http.StatusOK, ListReportsResponse{Reports: rows})
}
