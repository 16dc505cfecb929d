package routes

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/gin-gonic/gin"
)

// bindIDSet reads the ids selected for removal. Forms send them as repeated "id[]"
// (or repeated "id") fields and JSON bodies as {"id": [...]}. Anything that is not
// a collection, including a single bare "id" value, comes back nil so the store can
// refuse it.
func bindIDSet(c *gin.Context) []string {
	if strings.HasPrefix(c.ContentType(), gin.MIMEJSON) {
		var body struct {
			ID json.RawMessage `json:"id"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			return nil
		}
		raw := bytes.TrimSpace(body.ID)
		if len(raw) == 0 || raw[0] != '[' {
			return nil
		}
		ids := []string{}
		if err := json.Unmarshal(raw, &ids); err != nil {
			return nil
		}
		return ids
	}

	if ids, ok := c.GetPostFormArray("id[]"); ok {
		return ids
	}
	if ids := c.PostFormArray("id"); len(ids) > 1 {
		return ids
	}
	return nil
}

// wantsJSON reports whether the caller is a script rather than a browser form.
func wantsJSON(c *gin.Context) bool {
	if strings.HasPrefix(c.ContentType(), gin.MIMEJSON) {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), gin.MIMEJSON)
}
