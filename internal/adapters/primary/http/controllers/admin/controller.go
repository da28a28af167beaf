package admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/admin/tg-bots/birthday-bot/internal/adapters/primary/http/middlewares"
	"github.com/admin/tg-bots/birthday-bot/internal/analytics"
	"github.com/admin/tg-bots/birthday-bot/internal/domain"
	"github.com/gin-gonic/gin"
)

const csvContentType = "text/csv; charset=utf-8"

// AdminService операции, доступные через admin API
type AdminService interface {
	ComputeUserStats(ctx context.Context, userID int64) (analytics.UserSummary, error)
	ComputeSystemAnalytics(ctx context.Context) (analytics.SystemSummary, error)
	WriteExportCSV(ctx context.Context, w io.Writer, includeDeleted bool) error
	ListExports(ctx context.Context) ([]string, error)
	GetExport(ctx context.Context, filename string) ([]byte, error)
	SendTodayReminders(ctx context.Context, now time.Time) (domain.DeliveryReport, error)
	SendUpcomingReminders(ctx context.Context, now time.Time) (domain.DeliveryReport, error)
}

type Controller struct {
	Service   AdminService
	JWTSecret []byte
	Log       *slog.Logger
	now       func() time.Time
}

func New(service AdminService, jwtSecret string, log *slog.Logger) *Controller {
	return &Controller{
		Service:   service,
		JWTSecret: []byte(jwtSecret),
		Log:       log,
		now:       time.Now,
	}
}

func (c *Controller) RegisterRoutes(router *gin.Engine) {
	admin := router.Group("/admin", middlewares.AdminAuth(c.JWTSecret, c.Log))
	{
		admin.GET("/analytics", c.systemAnalytics)
		admin.GET("/users/:id/stats", c.userStats)
		admin.GET("/export.csv", c.exportCSV)
		admin.GET("/exports", c.listExports)
		admin.GET("/exports/:name", c.getExport)
		admin.POST("/reminders/:kind/run", c.runReminders)
	}
}

func (c *Controller) systemAnalytics(ctx *gin.Context) {
	summary, err := c.Service.ComputeSystemAnalytics(ctx.Request.Context())
	if err != nil {
		c.respondError(ctx, "failed to compute analytics", err)
		return
	}
	ctx.JSON(http.StatusOK, summary)
}

func (c *Controller) userStats(ctx *gin.Context) {
	userID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "user id must be an integer"})
		return
	}

	summary, err := c.Service.ComputeUserStats(ctx.Request.Context(), userID)
	if err != nil {
		c.respondError(ctx, "failed to compute user stats", err)
		return
	}
	ctx.JSON(http.StatusOK, summary)
}

// exportCSV стримит CSV прямо в ответ; include_deleted=true добавляет удалённые записи
func (c *Controller) exportCSV(ctx *gin.Context) {
	includeDeleted, _ := strconv.ParseBool(ctx.Query("include_deleted"))

	filename := fmt.Sprintf("birthdays_%s.csv", c.now().UTC().Format("20060102_150405"))
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Header("Content-Type", csvContentType)
	ctx.Status(http.StatusOK)

	if err := c.Service.WriteExportCSV(ctx.Request.Context(), ctx.Writer, includeDeleted); err != nil {
		// заголовки уже отправлены, остаётся только оборвать ответ
		c.Log.Error("failed to write csv export", "error", err)
		ctx.Abort()
	}
}

func (c *Controller) listExports(ctx *gin.Context) {
	names, err := c.Service.ListExports(ctx.Request.Context())
	if err != nil {
		c.respondError(ctx, "failed to list exports", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"exports": names})
}

func (c *Controller) getExport(ctx *gin.Context) {
	name := ctx.Param("name")
	data, err := c.Service.GetExport(ctx.Request.Context(), name)
	if err != nil {
		c.respondError(ctx, "failed to get export", err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	ctx.Data(http.StatusOK, csvContentType, data)
}

func (c *Controller) runReminders(ctx *gin.Context) {
	kind := domain.ReminderKind(ctx.Param("kind"))

	var (
		report domain.DeliveryReport
		err    error
	)
	switch kind {
	case domain.ReminderKindToday:
		report, err = c.Service.SendTodayReminders(ctx.Request.Context(), c.now())
	case domain.ReminderKindUpcoming:
		report, err = c.Service.SendUpcomingReminders(ctx.Request.Context(), c.now())
	default:
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "kind must be today or upcoming"})
		return
	}
	if err != nil {
		c.respondError(ctx, "failed to run reminders", err)
		return
	}

	c.Log.Info("reminders triggered via admin api",
		"kind", kind,
		"subject", middlewares.AdminSubject(ctx),
		"sent", report.Sent,
		"failed", report.Failed,
	)
	ctx.JSON(http.StatusOK, report)
}

func (c *Controller) respondError(ctx *gin.Context, msg string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrNoData):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrStorageDisabled):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		c.Log.Error(msg, "error", err)
		ctx.JSON(status, gin.H{"error": "internal error"})
		return
	}
	ctx.JSON(status, gin.H{"error": err.Error()})
}
