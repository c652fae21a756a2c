package controllers

import (
	"net/http"

	"github.com/mo7ami/backend-go/internal/retrieval"
)

// DocumentController 法律文献浏览控制器
type DocumentController struct {
	BaseController
	documents *retrieval.DocumentRepo
}

func (c *DocumentController) Prepare() {
	if r := GetRegistry(); r != nil {
		c.documents = r.Documents
	}
}

// GET /api/documents?domain=family_law&language=fr
func (c *DocumentController) List() {
	domain := c.GetString("domain")
	if domain == "" {
		c.JSONError(http.StatusBadRequest, "domain is required")
		return
	}
	language := c.GetString("language")

	docs, err := c.documents.ListByDomain(c.Ctx.Request.Context(), domain, language)
	if err != nil {
		c.JSONError(http.StatusInternalServerError, "failed to list documents")
		return
	}

	c.JSONSuccess(map[string]interface{}{
		"documents": docs,
		"total":     len(docs),
	})
}

// GET /api/documents/:ref
func (c *DocumentController) GetByRef() {
	ref := c.Ctx.Input.Param(":ref")

	doc, err := c.documents.GetByOfficialRef(c.Ctx.Request.Context(), ref)
	if err != nil {
		c.JSONError(http.StatusInternalServerError, "failed to load document")
		return
	}
	if doc == nil {
		c.JSONError(http.StatusNotFound, "document not found")
		return
	}

	c.JSONSuccess(doc)
}
