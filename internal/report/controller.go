package report

import (
	"errors"
	"net/http"

	"expense_tracker/internal/auth"

	"github.com/gin-gonic/gin"
)

type ReportController struct {
	service ReportServiceInterface
}

func NewReportController(service ReportServiceInterface) *ReportController {
	return &ReportController{
		service: service,
	}
}

// CreateReport queues an asynchronous category-summary export for the caller.
func (rc *ReportController) CreateReport(c *gin.Context) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication error", "error": "User not authenticated"})
		return
	}

	rep, err := rc.service.QueueReport(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error queueing report", "error": "Failed to queue report"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Report queued",
		"data": gin.H{
			"id":     rep.ID,
			"status": rep.Status,
		},
	})
}

// GetReport returns the status of an owned report export.
func (rc *ReportController) GetReport(c *gin.Context) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication error", "error": "User not authenticated"})
		return
	}

	rep, err := rc.service.GetReport(c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Report not found", "error": "Report not found or you do not have permission to access it"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching report", "error": "Failed to fetch report"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Report fetched successfully",
		"data":    rep,
	})
}
