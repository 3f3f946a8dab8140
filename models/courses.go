package models

import "gorm.io/gorm"

type Course struct {
	gorm.Model
	Title       string
	ShortDesc   string
	Description string
	AuthorID    uint
	LogoURL     string
	Modules     []Module

	// Certificate configuration. Layout columns are nullable; defaults are
	// applied once through CertificateLayout(), never at draw sites.
	CertificateEnabled  bool   `gorm:"default:false"`
	CertificateTemplate string // URL of the background image (PNG or JPEG)

	CertNameX        *float64 // percent from the left edge, 0-100
	CertNameY        *float64 // percent from the top edge, 0-100
	CertNameFontSize *float64
	CertNameColor    *string // #RRGGBB
	CertDateX        *float64
	CertDateY        *float64
	CertDateFontSize *float64
	CertDateColor    *string
}

type Module struct {
	gorm.Model
	CourseID   uint `gorm:"index"`
	Title      string
	OrderIndex int
	Lessons    []Lesson
}

type Lesson struct {
	gorm.Model
	ModuleID        uint `gorm:"index"`
	Title           string
	Description     string
	VideoURL        string
	DurationSeconds int64
	SequenceOrder   int
}

// TextAnchor positions one text field on the certificate. Percentages are
// measured from the top-left corner of the template image.
type TextAnchor struct {
	XPercent float64
	YPercent float64
	FontSize float64
	Color    string
}

type CertificateLayout struct {
	Name TextAnchor
	Date TextAnchor
}

const (
	defaultAnchorPercent = 50.0
	defaultNameFontSize  = 48.0
	defaultDateYPercent  = 60.0
	defaultDateFontSize  = 24.0
	defaultTextColor     = "#000000"
)

// CertificateLayout resolves the course's nullable layout columns into a
// fully populated layout. The date color falls back to the name color.
func (c *Course) CertificateLayout() CertificateLayout {
	layout := CertificateLayout{
		Name: TextAnchor{
			XPercent: defaultAnchorPercent,
			YPercent: defaultAnchorPercent,
			FontSize: defaultNameFontSize,
			Color:    defaultTextColor,
		},
		Date: TextAnchor{
			XPercent: defaultAnchorPercent,
			YPercent: defaultDateYPercent,
			FontSize: defaultDateFontSize,
		},
	}

	if c.CertNameX != nil {
		layout.Name.XPercent = *c.CertNameX
	}
	if c.CertNameY != nil {
		layout.Name.YPercent = *c.CertNameY
	}
	if c.CertNameFontSize != nil {
		layout.Name.FontSize = *c.CertNameFontSize
	}
	if c.CertNameColor != nil && *c.CertNameColor != "" {
		layout.Name.Color = *c.CertNameColor
	}

	if c.CertDateX != nil {
		layout.Date.XPercent = *c.CertDateX
	}
	if c.CertDateY != nil {
		layout.Date.YPercent = *c.CertDateY
	}
	if c.CertDateFontSize != nil {
		layout.Date.FontSize = *c.CertDateFontSize
	}
	if c.CertDateColor != nil && *c.CertDateColor != "" {
		layout.Date.Color = *c.CertDateColor
	} else {
		layout.Date.Color = layout.Name.Color
	}

	return layout
}
