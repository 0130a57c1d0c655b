package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	mdw "github.com/parkashmi09/entryManagementbackend/internal/transport/http/middleware"
	resp "github.com/parkashmi09/entryManagementbackend/internal/transport/http/response"
	"github.com/parkashmi09/entryManagementbackend/internal/service"
	"github.com/parkashmi09/entryManagementbackend/pkg/apperr"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type EntryHandler struct {
	entries service.EntryService
	authMW  gin.HandlerFunc
}

func NewEntryHandler(entries service.EntryService, authMW gin.HandlerFunc) *EntryHandler {
	return &EntryHandler{entries: entries, authMW: authMW}
}

func (h *EntryHandler) MountAPI(api *gin.RouterGroup) {
	g := api.Group("/entries", h.authMW)
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/export", h.Export)
	g.GET("/export/all", h.ExportAll)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// owner 一律取鉴权上下文，绝不信任请求体里的归属字段
func owner(c *gin.Context) (string, bool) {
	id, ok := mdw.IdentityFrom(c)
	return id.UID, ok
}

func (h *EntryHandler) Create(c *gin.Context) {
	uid, ok := owner(c)
	if !ok {
		resp.Fail(c, apperr.Unauthorized("Authentication failed"))
		return
	}
	var req service.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c, bindError(err))
		return
	}
	out, err := h.entries.Create(c.Request.Context(), uid, req)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, http.StatusCreated, "Entry created successfully", out)
}

func (h *EntryHandler) List(c *gin.Context) {
	uid, ok := owner(c)
	if !ok {
		resp.Fail(c, apperr.Unauthorized("Authentication failed"))
		return
	}
	var q service.ListEntriesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		resp.Fail(c, bindError(err))
		return
	}
	page, err := h.entries.List(c.Request.Context(), uid, q)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.Page(c, http.StatusOK, "Entries fetched successfully", page.Items,
		resp.NewPagination(page.Page, page.Limit, page.Total))
}

func (h *EntryHandler) Get(c *gin.Context) {
	uid, ok := owner(c)
	if !ok {
		resp.Fail(c, apperr.Unauthorized("Authentication failed"))
		return
	}
	out, err := h.entries.Get(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, http.StatusOK, "Entry fetched successfully", out)
}

func (h *EntryHandler) Update(c *gin.Context) {
	uid, ok := owner(c)
	if !ok {
		resp.Fail(c, apperr.Unauthorized("Authentication failed"))
		return
	}
	var req service.UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c, bindError(err))
		return
	}
	out, err := h.entries.Update(c.Request.Context(), uid, c.Param("id"), req)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, http.StatusOK, "Entry updated successfully", out)
}

func (h *EntryHandler) Delete(c *gin.Context) {
	uid, ok := owner(c)
	if !ok {
		resp.Fail(c, apperr.Unauthorized("Authentication failed"))
		return
	}
	if err := h.entries.Delete(c.Request.Context(), uid, c.Param("id")); err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, http.StatusOK, "Entry deleted successfully", nil)
}

func (h *EntryHandler) Export(c *gin.Context) {
	uid, ok := owner(c)
	if !ok {
		resp.Fail(c, apperr.Unauthorized("Authentication failed"))
		return
	}
	f, err := h.entries.Export(c.Request.Context(), uid, c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		resp.Fail(c, err)
		return
	}
	writeAttachment(c, f)
}

func (h *EntryHandler) ExportAll(c *gin.Context) {
	uid, ok := owner(c)
	if !ok {
		resp.Fail(c, apperr.Unauthorized("Authentication failed"))
		return
	}
	f, err := h.entries.ExportAll(c.Request.Context(), uid)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	writeAttachment(c, f)
}

func writeAttachment(c *gin.Context, f *service.ExportFile) {
	c.Header("Content-Disposition", `attachment; filename="`+f.Filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, f.Content)
}
