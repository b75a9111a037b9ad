package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ermradulsharma/pahadigo-sub000/internal/services"
)

// maxFileBytes caps each uploaded file; the app-wide body limit caps the
// whole request.
const maxFileBytes = 10 << 20

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm)
}

func readUpload(field string, fh *multipart.FileHeader) (services.Upload, error) {
	if fh.Size > maxFileBytes {
		return services.Upload{}, &validationError{fields: map[string]string{field: "file exceeds 10MB"}}
	}
	f, err := fh.Open()
	if err != nil {
		return services.Upload{}, fmt.Errorf("failed to open upload %s: %w", field, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxFileBytes+1))
	if err != nil {
		return services.Upload{}, fmt.Errorf("failed to read upload %s: %w", field, err)
	}
	if len(data) > maxFileBytes {
		return services.Upload{}, &validationError{fields: map[string]string{field: "file exceeds 10MB"}}
	}
	return services.Upload{Field: field, Filename: fh.Filename, Data: data}, nil
}

// formUploads reads every file part in a stable field order.
func formUploads(form *multipart.Form) ([]services.Upload, error) {
	fields := make([]string, 0, len(form.File))
	for field := range form.File {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var uploads []services.Upload
	for _, field := range fields {
		for _, fh := range form.File[field] {
			u, err := readUpload(field, fh)
			if err != nil {
				return nil, err
			}
			uploads = append(uploads, u)
		}
	}
	return uploads, nil
}

// decodeFormJSON fills dst from a multipart form. A "data" field holding
// JSON wins; otherwise scalar fields are copied by their JSON names and
// object-valued fields are parsed as JSON strings.
func decodeFormJSON(form *multipart.Form, dst any, arrays ...string) error {
	if raw := firstValue(form, "data"); raw != "" {
		if err := json.Unmarshal([]byte(raw), dst); err != nil {
			return errBadBody
		}
		return nil
	}

	isArray := make(map[string]bool, len(arrays))
	for _, a := range arrays {
		isArray[a] = true
	}

	doc := make(map[string]any, len(form.Value))
	for key, values := range form.Value {
		if len(values) == 0 {
			continue
		}
		name := strings.TrimSuffix(key, "[]")
		switch {
		case isArray[name]:
			var list []string
			for _, v := range values {
				list = append(list, splitList(v)...)
			}
			doc[name] = list
		case strings.HasPrefix(strings.TrimSpace(values[0]), "{"):
			doc[name] = json.RawMessage(values[0])
		default:
			doc[name] = values[0]
		}
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return errBadBody
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return errBadBody
	}
	return nil
}

func firstValue(form *multipart.Form, key string) string {
	if v := form.Value[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func splitList(v string) []string {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "[") {
		var list []string
		if json.Unmarshal([]byte(v), &list) == nil {
			return list
		}
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
