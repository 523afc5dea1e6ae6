package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"arc-backend/utilities"
)

const maxDumpBody = 8 << 10

// Bodies under these prefixes carry health or personal data and are never logged.
var redactedPrefixes = []string{
	"/api/questionnaire/",
	"/api/generate-pdf",
	"/api/data-rights/",
	"/api/consent/",
}

var redactedHeaders = []string{"Authorization", "Cookie"}

func RequestDumpMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		body := "[redacted]"
		if !redacted(c.Request.URL.Path) && c.Request.Body != nil {
			bodyBytes, _ := io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			if len(bodyBytes) > maxDumpBody {
				bodyBytes = append(bodyBytes[:maxDumpBody:maxDumpBody], "..."...)
			}
			body = string(bodyBytes)
		}

		utilities.Debug(
			"[Request]\n"+
				"\tMethod: %s\n"+
				"\tURL: %s\n"+
				"\tHeaders: %v\n"+
				"\tBody: %s",
			c.Request.Method,
			c.Request.URL.String(),
			safeHeaders(c.Request.Header),
			body,
		)

		c.Next()
	}
}

func redacted(path string) bool {
	for _, p := range redactedPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func safeHeaders(h http.Header) http.Header {
	out := h.Clone()
	for _, k := range redactedHeaders {
		if out.Get(k) != "" {
			out.Set(k, "[redacted]")
		}
	}
	return out
}
