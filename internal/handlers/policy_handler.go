package handlers

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ermradulsharma/pahadigo-sub000/internal/services"
)

var legalPage = template.Must(template.New("legal").Parse(`<!DOCTYPE html>
<html><head><title>{{.Title}} - PahadiGo</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
<style>body{font-family:-apple-system,BlinkMacSystemFont,sans-serif;max-width:800px;margin:0 auto;padding:20px;color:#333}h1{color:#1a1a1a}</style>
</head><body>
<h1>{{.Title}}</h1>
<p>Last updated: {{.Updated}}</p>
{{range .Paragraphs}}<p>{{.}}</p>
{{end}}</body></html>`))

type PolicyHandler struct {
	policyService *services.PolicyService
}

func NewPolicyHandler(policyService *services.PolicyService) *PolicyHandler {
	return &PolicyHandler{policyService: policyService}
}

func (h *PolicyHandler) Get(c *fiber.Ctx) error {
	p, err := h.policyService.Get(c.UserContext(), c.Params("target"), c.Params("type"))
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "", p)
}

// Page renders the policy as a standalone HTML document for app web views.
func (h *PolicyHandler) Page(c *fiber.Ctx) error {
	p, err := h.policyService.Get(c.UserContext(), c.Params("target"), c.Params("type"))
	if err != nil {
		status := statusFor(err)
		if status == fiber.StatusInternalServerError {
			return RespondError(c, err)
		}
		return c.Status(status).Type("html").SendString("<!DOCTYPE html><html><body><p>Policy not available.</p></body></html>")
	}

	var paragraphs []string
	for _, block := range strings.Split(strings.ReplaceAll(p.Content, "\r\n", "\n"), "\n\n") {
		if block = strings.TrimSpace(block); block != "" {
			paragraphs = append(paragraphs, block)
		}
	}

	var buf bytes.Buffer
	if err := legalPage.Execute(&buf, map[string]any{
		"Title":      p.Title,
		"Updated":    p.UpdatedAt.Format("January 2, 2006"),
		"Paragraphs": paragraphs,
	}); err != nil {
		return RespondError(c, err)
	}
	return c.Type("html").Send(buf.Bytes())
}
