// Package voucher renders booking confirmations as PDF with a signed QR code.
package voucher

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/ermradulsharma/pahadigo-sub000/internal/models"
)

var ErrBadPayload = errors.New("voucher payload is malformed or forged")

type Renderer struct {
	secret []byte
}

func NewRenderer(secret string) *Renderer {
	return &Renderer{secret: []byte(secret)}
}

// Payload returns bookingID|itemID|travelDate|signature.
func (r *Renderer) Payload(b *models.Booking) string {
	data := fmt.Sprintf("%s|%s|%s", b.ID, b.ItemID, b.TravelDate.Format("2006-01-02"))
	return data + "|" + r.sign(data)
}

// Check validates a scanned payload and returns the booking id.
func (r *Renderer) Check(payload string) (string, error) {
	idx := strings.LastIndex(payload, "|")
	if idx <= 0 {
		return "", ErrBadPayload
	}
	data, sig := payload[:idx], payload[idx+1:]
	if strings.Count(data, "|") != 2 {
		return "", ErrBadPayload
	}
	if !hmac.Equal([]byte(sig), []byte(r.sign(data))) {
		return "", ErrBadPayload
	}
	return strings.SplitN(data, "|", 2)[0], nil
}

func (r *Renderer) sign(data string) string {
	h := hmac.New(sha256.New, r.secret)
	h.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// Details is what the voucher prints besides the booking row.
type Details struct {
	TravellerName string
	VendorName    string
	VendorPhone   string
}

func (r *Renderer) Render(b *models.Booking, d Details) ([]byte, error) {
	qrPNG, err := qrcode.Encode(r.Payload(b), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate qr code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("PahadiGo booking voucher", false)
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, "PahadiGo Booking Voucher")
	pdf.Ln(14)

	rows := [][2]string{
		{"Booking ID", b.ID.String()},
		{"Experience", b.ItemTitle},
		{"Category", b.Category},
		{"Travel date", b.TravelDate.Format("02 Jan 2006")},
		{"Guests", fmt.Sprintf("%d", b.Guests)},
		{"Amount paid", fmt.Sprintf("%s %.2f", b.Currency, b.TotalPrice)},
		{"Status", b.Status},
		{"Traveller", d.TravellerName},
		{"Operator", d.VendorName},
		{"Operator phone", d.VendorPhone},
	}
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(45, 8, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 8, pdf.UnicodeTranslatorFromDescriptor("")(row[1]), "", 1, "L", false, 0, "")
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 30, 45, 45, false, opts, 0, "")

	pdf.Ln(10)
	pdf.SetFont("Arial", "I", 9)
	pdf.MultiCell(0, 5, "Show this voucher and QR code to your operator at check-in. The QR code is signed and cannot be altered.", "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render voucher: %w", err)
	}
	return buf.Bytes(), nil
}
