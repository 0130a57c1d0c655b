package response

import (
	"math"

	"github.com/gin-gonic/gin"

	"github.com/parkashmi09/entryManagementbackend/pkg/apperr"
)

// Body 统一响应壳
type Body struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Errors     interface{} `json:"errors,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// NewPagination pages = ceil(total/limit)
func NewPagination(page, limit int, total int64) *Pagination {
	pages := 0
	if limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return &Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

func OK(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Body{Success: true, Message: message, Data: data})
}

func Page(c *gin.Context, status int, message string, data interface{}, p *Pagination) {
	c.JSON(status, Body{Success: true, Message: message, Data: data, Pagination: p})
}

// suppressInternal 生产模式置 true：500 的内部细节不出网
var suppressInternal bool

func SuppressInternal(on bool) { suppressInternal = on }

// Fail 归一化错误出口；500 且生产模式时改写为通用文案
func Fail(c *gin.Context, err error) {
	ae := apperr.From(err)
	msg := ae.Error()
	if ae.Status >= 500 && suppressInternal {
		msg = "Something went wrong"
	}
	body := Body{Success: false, Message: msg}
	if len(ae.Fields) > 0 {
		body.Errors = ae.Fields
	}
	c.JSON(ae.Status, body)
}

// Abort Fail + 中断后续 handler（中间件用）
func Abort(c *gin.Context, err error) {
	Fail(c, err)
	c.Abort()
}
