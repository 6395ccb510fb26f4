package helper_util

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// GetPaginationParams reads page/limit query parameters and clamps them to
// sane bounds rather than rejecting the request: page floors at 1, limit is
// clamped to [1, 100].
func GetPaginationParams(c *gin.Context) (page int, limit int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

// GetDateRangeParams reads startDate/endDate query parameters in YYYY-MM-DD
// form. Unparseable or absent bounds fall back to the defaults instead of
// failing: startDate defaults to 30 days ago, endDate defaults to now.
func GetDateRangeParams(c *gin.Context, now time.Time) (from time.Time, to time.Time) {
	from = now.AddDate(0, 0, -30)
	to = now

	if raw := c.Query("startDate"); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			from = parsed
		}
	}
	if raw := c.Query("endDate"); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			// Inclusive upper bound for the named day.
			to = parsed.AddDate(0, 0, 1)
		}
	}
	if to.Before(from) {
		to = from
	}
	return from, to
}
