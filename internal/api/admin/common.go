// Package admin implements the authenticated back-office API mounted under
// /admin-panel/. Every handler except the authentication endpoints runs
// behind the session and staff middleware, and content handlers scope every
// query to the signed-in owner: another owner's row is indistinguishable
// from a missing one.
package admin

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// parsePagination reads ?page= and ?page_size= and returns the limit/offset
// pair for a repository search. Out-of-range values fall back to defaults
// rather than erroring; a bad page number is not worth a 400.
func parsePagination(c *gin.Context) (limit, offset int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if err != nil || size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return size, (page - 1) * size
}
