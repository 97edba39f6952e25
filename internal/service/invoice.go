// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"archive/zip"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strings"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/awasec/awa-cms/internal/model"
)

// Invoice canvas geometry. The bitmap font is drawn at 2x scale, so the
// logical grid is half the pixel size.
const (
	invoiceWidth  = 840
	invoiceHeight = 600
	invoiceScale  = 2
	invoiceMargin = 30
	lineHeight    = 22
)

var (
	invoiceInk     = color.RGBA{0x1a, 0x1a, 0x2e, 0xff}
	invoiceMuted   = color.RGBA{0x6b, 0x72, 0x80, 0xff}
	invoiceAccent  = color.RGBA{0x0f, 0x76, 0x6e, 0xff}
	invoicePaper   = color.White
	invoiceDueType = color.RGBA{0xb4, 0x23, 0x18, 0xff}
)

// InvoiceRenderer rasterizes payment invoices to PNG so clients get an
// identical document regardless of browser or locale settings.
type InvoiceRenderer struct {
	CompanyName string
}

// NewInvoiceRenderer creates a renderer stamped with the company name.
func NewInvoiceRenderer(companyName string) *InvoiceRenderer {
	if companyName == "" {
		companyName = "AWA Cybersecurity"
	}
	return &InvoiceRenderer{CompanyName: companyName}
}

// Render writes a PNG invoice for one payment to w. The bitmap face has no
// Arabic glyphs, so all text is rendered from the English values.
func (r *InvoiceRenderer) Render(w io.Writer, project model.Project, payment model.Payment, clientName string) error {
	canvas := image.NewRGBA(image.Rect(0, 0, invoiceWidth, invoiceHeight))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(invoicePaper), image.Point{}, draw.Src)

	p := &invoicePainter{canvas: canvas, y: invoiceMargin}

	p.text(invoiceMargin, r.CompanyName, invoiceAccent)
	p.textRight(fmt.Sprintf("INVOICE #%06d", payment.ID), invoiceInk)
	p.newline()
	p.text(invoiceMargin, time.Now().Format("2 January 2006"), invoiceMuted)
	p.newline()
	p.rule()

	p.newline()
	p.text(invoiceMargin, "Billed to", invoiceMuted)
	p.newline()
	p.text(invoiceMargin, clientName, invoiceInk)
	p.newline()
	p.text(invoiceMargin, "Project: "+project.Name.Resolve(model.LocaleEN), invoiceInk)
	p.newline()
	p.newline()
	p.rule()

	p.newline()
	p.text(invoiceMargin, payment.Title.Resolve(model.LocaleEN), invoiceInk)
	p.textRight(formatAmount(payment.Amount), invoiceInk)
	p.newline()
	p.text(invoiceMargin, "Due "+payment.DueDate.Format("2 January 2006"), invoiceMuted)
	p.newline()
	p.newline()
	p.rule()

	p.newline()
	p.text(invoiceMargin, "Total", invoiceMuted)
	p.textRight(formatAmount(payment.Amount), invoiceAccent)
	p.newline()
	p.newline()

	status := payment.ComputedStatus(time.Now())
	switch status {
	case model.PaymentStatusPaid:
		label := "PAID"
		if payment.PaidAt != nil {
			label = "PAID " + payment.PaidAt.Format("2 January 2006")
		}
		p.text(invoiceMargin, label, invoiceAccent)
	case model.PaymentStatusDue:
		p.text(invoiceMargin, "OVERDUE", invoiceDueType)
	default:
		p.text(invoiceMargin, strings.ToUpper(strings.ReplaceAll(status, "_", " ")), invoiceMuted)
	}

	return png.Encode(w, canvas)
}

// RenderArchive writes a zip with one PNG invoice per paid payment to w.
// Unpaid payments have no invoice yet and are skipped.
func (r *InvoiceRenderer) RenderArchive(w io.Writer, project model.Project, payments []model.Payment, clientName string) error {
	zw := zip.NewWriter(w)
	for _, payment := range payments {
		if payment.Status != model.PaymentStatusPaid {
			continue
		}
		f, err := zw.Create(InvoiceFilename(payment))
		if err != nil {
			return fmt.Errorf("failed to add invoice to archive: %w", err)
		}
		if err := r.Render(f, project, payment, clientName); err != nil {
			return fmt.Errorf("failed to render invoice %d: %w", payment.ID, err)
		}
	}
	return zw.Close()
}

// InvoiceFilename returns the download filename for a payment invoice.
func InvoiceFilename(payment model.Payment) string {
	return fmt.Sprintf("invoice-%06d.png", payment.ID)
}

func formatAmount(amount float64) string {
	s := fmt.Sprintf("%.2f", amount)
	dot := strings.IndexByte(s, '.')
	whole, frac := s[:dot], s[dot+1:]

	// Group thousands
	var b strings.Builder
	for i := 0; i < len(whole); i++ {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteByte(whole[i])
	}
	return "$" + b.String() + "." + frac
}

// invoicePainter draws scaled bitmap-font text onto a canvas. The fixed-width
// face keeps column alignment trivial.
type invoicePainter struct {
	canvas *image.RGBA
	y      int
}

func (p *invoicePainter) newline() { p.y += lineHeight }

func (p *invoicePainter) rule() {
	for x := invoiceMargin; x < invoiceWidth-invoiceMargin; x++ {
		p.canvas.Set(x, p.y, invoiceMuted)
	}
	p.y += 4
}

func (p *invoicePainter) text(x int, s string, ink color.Color) {
	drawScaledString(p.canvas, x, p.y, s, ink)
}

func (p *invoicePainter) textRight(s string, ink color.Color) {
	width := len(s) * basicfont.Face7x13.Advance * invoiceScale
	drawScaledString(p.canvas, invoiceWidth-invoiceMargin-width, p.y, s, ink)
}

// drawScaledString renders s at 2x by drawing to a small buffer and
// replicating pixels. basicfont has a single size, so scaling is manual.
func drawScaledString(dst *image.RGBA, x, y int, s string, ink color.Color) {
	face := basicfont.Face7x13
	w := len(s) * face.Advance
	h := face.Height

	buf := image.NewRGBA(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  buf,
		Src:  image.NewUniform(ink),
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(s)

	for by := 0; by < h; by++ {
		for bx := 0; bx < w; bx++ {
			c := buf.RGBAAt(bx, by)
			if c.A == 0 {
				continue
			}
			for sy := 0; sy < invoiceScale; sy++ {
				for sx := 0; sx < invoiceScale; sx++ {
					dst.SetRGBA(x+bx*invoiceScale+sx, y+by*invoiceScale+sy, c)
				}
			}
		}
	}
}
