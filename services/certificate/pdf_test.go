package certificate

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/models"
)

func testLayout() models.CertificateLayout {
	return models.CertificateLayout{
		Name: models.TextAnchor{XPercent: 50, YPercent: 40, FontSize: 48, Color: "#1A2B3C"},
		Date: models.TextAnchor{XPercent: 50, YPercent: 60, FontSize: 24, Color: "#1A2B3C"},
	}
}

func pngTemplate(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestTextPoint(t *testing.T) {
	// 50/50 on 1920x1080, y measured from the top, bottom-left origin.
	x, y := TextPoint(50, 50, 1920, 1080)
	assert.Equal(t, 960.0, x)
	assert.Equal(t, 540.0, y)

	// Top of the image maps to the full canvas height.
	x, y = TextPoint(0, 0, 1920, 1080)
	assert.Equal(t, 0.0, x)
	assert.Equal(t, 1080.0, y)

	// Bottom of the image maps to zero.
	_, y = TextPoint(100, 100, 1920, 1080)
	assert.Equal(t, 0.0, y)
}

func TestRenderPNGTemplate(t *testing.T) {
	document, err := Render(RenderInput{
		StudentName:    "Ada Lovelace",
		CompletionDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Template:       pngTemplate(t, 400, 300),
		ContentType:    "image/png",
		Layout:         testLayout(),
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(document, []byte("%PDF")))
}

func TestRenderJPEGTemplate(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 320, 240)), nil))

	document, err := Render(RenderInput{
		StudentName:    "Ada Lovelace",
		CompletionDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Template:       buf.Bytes(),
		ContentType:    "image/jpeg; charset=binary",
		Layout:         testLayout(),
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(document, []byte("%PDF")))
}

func TestRenderUnsupportedFormat(t *testing.T) {
	_, err := Render(RenderInput{
		StudentName: "Ada Lovelace",
		Template:    pngTemplate(t, 10, 10),
		ContentType: "image/gif",
		Layout:      testLayout(),
	})
	assert.ErrorIs(t, err, ErrUnsupportedTemplateFormat)
}

func TestNewValidationCodeFormat(t *testing.T) {
	code := NewValidationCode()
	assert.Regexp(t, `^CERT-[0-9A-F]{8}$`, code)
	assert.NotEqual(t, code, NewValidationCode())
}
