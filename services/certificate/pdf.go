package certificate

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"math"
	"strings"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"github.com/go-pdf/fpdf"

	"backend/models"
	"backend/utils"
)

// ErrUnsupportedTemplateFormat means the template image is neither PNG nor
// JPEG.
var ErrUnsupportedTemplateFormat = errors.New("unsupported template format")

const fontFamily = "Helvetica"

// RenderInput carries everything the composer needs to produce a document.
type RenderInput struct {
	StudentName    string
	CompletionDate time.Time
	Template       []byte
	ContentType    string
	Layout         models.CertificateLayout
}

// Render composes a single-page PDF sized exactly to the template's pixel
// dimensions (1 px = 1 pt), with the template as full-bleed background and
// the student name and completion date drawn at their configured anchors.
// Output is deterministic for a fixed input.
func Render(in RenderInput) ([]byte, error) {
	format, err := templateFormat(in.ContentType)
	if err != nil {
		return nil, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(in.Template))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedTemplateFormat, err)
	}
	width := float64(cfg.Width)
	height := float64(cfg.Height)

	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCreationDate(in.CompletionDate)
	pdf.AddPage()

	opts := fpdf.ImageOptions{ImageType: format}
	pdf.RegisterImageOptionsReader("template", opts, bytes.NewReader(in.Template))
	pdf.ImageOptions("template", 0, 0, width, height, false, opts, 0, "")

	if err := drawText(pdf, in.StudentName, in.Layout.Name, width, height); err != nil {
		return nil, err
	}
	date := in.CompletionDate.Format("02/01/2006")
	if err := drawText(pdf, date, in.Layout.Date, width, height); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("serialize certificate: %w", err)
	}
	return buf.Bytes(), nil
}

func drawText(pdf *fpdf.Fpdf, text string, anchor models.TextAnchor, width, height float64) error {
	r, g, b, err := utils.ParseHexColor(anchor.Color)
	if err != nil {
		return err
	}

	pdf.SetFont(fontFamily, "B", anchor.FontSize)
	pdf.SetTextColor(
		int(math.Round(r*255)),
		int(math.Round(g*255)),
		int(math.Round(b*255)),
	)

	// TextPoint yields bottom-origin canvas coordinates; fpdf's origin is
	// the top-left corner, so flip back before drawing.
	x, y := TextPoint(anchor.XPercent, anchor.YPercent, width, height)
	pdf.Text(x, height-y, text)

	return nil
}

// TextPoint maps percentage anchors, measured from the top-left of the
// template image, onto a bottom-left origin canvas. A 50/50 anchor on a
// 1920x1080 image lands at (960, 540).
func TextPoint(xPercent, yPercent, width, height float64) (x, y float64) {
	x = xPercent / 100 * width
	y = height - yPercent/100*height
	return x, y
}

func templateFormat(contentType string) (string, error) {
	mediaType := contentType
	if idx := strings.Index(mediaType, ";"); idx >= 0 {
		mediaType = mediaType[:idx]
	}

	switch strings.ToLower(strings.TrimSpace(mediaType)) {
	case "image/png":
		return "PNG", nil
	case "image/jpeg", "image/jpg":
		return "JPG", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedTemplateFormat, contentType)
	}
}
