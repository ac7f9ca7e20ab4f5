package rest

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const MAX_PAGE_SIZE = 100

// ListRecordsQueryParams holds pagination parameters for the log listing
// endpoints
type ListRecordsQueryParams struct {
	Limit  int    `form:"limit,default=20"`
	Offset uint64 `form:"offset,default=0"`
}

// ParseListRecordsQuery parses pagination parameters for log listings
func ParseListRecordsQuery(c *gin.Context) (*ListRecordsQueryParams, error) {
	var params ListRecordsQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}

	// Cap limit
	if params.Limit > MAX_PAGE_SIZE {
		params.Limit = MAX_PAGE_SIZE
	}
	if params.Limit <= 0 {
		params.Limit = 20
	}

	return &params, nil
}

// parseAssetID parses the :id path parameter as an asset id
func parseAssetID(c *gin.Context) (uint64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// parseIndex parses the :index path parameter as a log index
func parseIndex(c *gin.Context) (uint64, bool) {
	raw := c.Param("index")
	index, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return index, true
}
