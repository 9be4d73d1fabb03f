package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "flowtrack/internal/errors"
	"flowtrack/internal/services"
	"flowtrack/internal/statement"
)

// ReportHandler serves the calendar-year reports.
type ReportHandler struct {
	reportService services.ReportServicer
	userService   services.UserServicer
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService services.ReportServicer, userService services.UserServicer) *ReportHandler {
	return &ReportHandler{reportService: reportService, userService: userService}
}

// MonthlyTotals returns the caller's income and expense per month
// @Summary     Monthly totals
// @Description Income and expense sums for each month of the year, January first
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       year query int true "Calendar year"
// @Success     200 {object} Envelope{data=[]models.MonthTotals} "Twelve monthly rows"
// @Failure     400 {object} ErrorResponse "Invalid year"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /reports/monthly [get]
func (h *ReportHandler) MonthlyTotals(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	year, err := parseYear(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	totals, err := h.reportService.YearlyTotals(userID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Monthly totals retrieved", totals)
}

// MonthlyBudgetReport returns the monthly totals with savings and the
// current budget
// @Summary     Monthly budget report
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       year query int true "Calendar year"
// @Success     200 {object} Envelope{data=[]models.MonthSummary} "Twelve monthly rows"
// @Failure     400 {object} ErrorResponse "Invalid year"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /reports/monthly/budget [get]
func (h *ReportHandler) MonthlyBudgetReport(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	year, err := parseYear(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.reportService.MonthlyReport(userID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Monthly report retrieved", report)
}

// Statement renders the monthly budget report as a PDF
// @Summary     Yearly statement PDF
// @Tags        reports
// @Produce     application/pdf
// @Security    BearerAuth
// @Param       year query int true "Calendar year"
// @Success     200 {file} file "PDF statement"
// @Failure     400 {object} ErrorResponse "Invalid year"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /reports/statement.pdf [get]
func (h *ReportHandler) Statement(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	year, err := parseYear(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.reportService.MonthlyReport(userID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := statement.Render(&buf, statement.Statement{
		Holder:      user.Username,
		Email:       user.Email,
		Year:        year,
		Budget:      user.Budget,
		Months:      report,
		GeneratedAt: time.Now().UTC(),
	}); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="flowtrack-statement-%d.pdf"`, year))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
