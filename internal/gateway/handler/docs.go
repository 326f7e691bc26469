package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"codeassist/internal/gateway/repository/docs"
)

func (h *CodeHandler) ListDocs(c *gin.Context) {
	caller, found := callerOrAbort(c)
	if !found {
		return
	}
	ids, err := h.docs.List(c.Request.Context(), caller.UserID)
	if err != nil {
		log.Printf("docs: list for %s failed: %v", caller.UserID, err)
		fail(c, http.StatusInternalServerError, "Failed to fetch documentation")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(ids),
		"data":    ids,
	})
}

func (h *CodeHandler) GetDoc(c *gin.Context) {
	caller, found := callerOrAbort(c)
	if !found {
		return
	}
	docID := c.Param("id")
	body, err := h.docs.Get(c.Request.Context(), caller.UserID, docID)
	if errors.Is(err, docs.ErrNotFound) {
		fail(c, http.StatusNotFound, "Documentation not found")
		return
	}
	if err != nil {
		log.Printf("docs: get %s failed: %v", docID, err)
		fail(c, http.StatusInternalServerError, "Failed to fetch documentation")
		return
	}
	url, err := h.docs.URL(c.Request.Context(), caller.UserID, docID)
	if err != nil {
		log.Printf("docs: presign %s failed: %v", docID, err)
		url = ""
	}
	ok(c, "", gin.H{
		"docId":         docID,
		"documentation": string(body),
		"url":           url,
	})
}
