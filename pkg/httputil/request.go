package httputil

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/risingbsm/bsm-api/pkg/errors"
)

// ID parses the :id route parameter. On a malformed value it renders
// the 400 envelope and returns false, so handlers can bail with a bare
// return.
func ID(c *gin.Context) (int64, bool) {
	return IDParam(c, "id")
}

// IDParam parses any numeric route parameter.
func IDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		Error(c, errors.BadRequest("invalid "+name))
		return 0, false
	}
	return id, true
}
