// Package render turns normalized artifact metadata into an SVG badge and a
// JSON snapshot. Badge and Snapshot are pure; Writer places their output
// under a base directory keyed by artifact coordinates.
package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/Masterminds/semver/v3"

	"github.com/stacklok/toolhive-badge-sync/internal/artifact"
)

const (
	// MaxBadgeCategories is the number of categories shown before truncating
	MaxBadgeCategories = 3

	// CategoryEllipsis is appended when an artifact has more than MaxBadgeCategories categories
	CategoryEllipsis = "…"

	colorStable     = "#4c1"
	colorPrerelease = "#fe7d37"
	colorUnknown    = "#9f9f9f"

	charWidth    = 7
	padding      = 10
	lineHeight   = 20
	badgeLines   = 3
	noCategories = "uncategorized"
)

var badgeTemplate = template.Must(template.New("badge").Parse(
	`<svg xmlns="http://www.w3.org/2000/svg" width="{{.Width}}" height="{{.Height}}" role="img" aria-label="{{.Label}}">
  <title>{{.Label}}</title>
  <rect width="100%" height="100%" rx="3" fill="#555"/>
  <rect x="{{.VersionX}}" y="0" width="{{.VersionWidth}}" height="{{.LineHeight}}" rx="3" fill="{{.VersionColor}}"/>
  <g font-family="monospace" font-size="11" fill="#fff">
    <text x="{{.Padding}}" y="14">{{.Coordinate}}</text>
    <text x="{{.VersionTextX}}" y="14">{{.Version}}</text>
    <text x="{{.Padding}}" y="34">{{.Counts}}</text>
    <text x="{{.Padding}}" y="54">{{.Categories}}</text>
  </g>
</svg>
`))

// badgeView holds the already escaped strings and computed geometry of a badge
type badgeView struct {
	Width        int
	Height       int
	LineHeight   int
	Padding      int
	Label        string
	Coordinate   string
	Version      string
	VersionColor string
	VersionX     int
	VersionTextX int
	VersionWidth int
	Counts       string
	Categories   string
}

// Badge renders the SVG badge of an artifact. The output depends only on meta,
// so rendering the same metadata twice yields identical bytes.
func Badge(meta artifact.Metadata) ([]byte, error) {
	coordinate := meta.GroupID + ":" + meta.ArtifactID
	counts := "deps " + strconv.FormatInt(meta.DependencyCount, 10) +
		" · refs " + strconv.FormatInt(meta.RefCount, 10)
	categories := BadgeCategories(meta.Categories)

	coordWidth := textWidth(coordinate)
	versionWidth := textWidth(meta.LatestVersion)
	width := max(coordWidth+versionWidth, textWidth(counts), textWidth(categories))

	view := badgeView{
		Width:        width,
		Height:       lineHeight * badgeLines,
		LineHeight:   lineHeight,
		Padding:      padding,
		Label:        escape(coordinate + " " + meta.LatestVersion),
		Coordinate:   escape(coordinate),
		Version:      escape(meta.LatestVersion),
		VersionColor: VersionColor(meta.LatestVersion),
		VersionX:     width - versionWidth,
		VersionTextX: width - versionWidth + padding,
		VersionWidth: versionWidth,
		Counts:       escape(counts),
		Categories:   escape(categories),
	}

	var buf bytes.Buffer
	if err := badgeTemplate.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("failed to render badge for %s: %w", meta.Coordinate(), err)
	}
	return buf.Bytes(), nil
}

// BadgeCategories returns the category line shown on a badge: at most
// MaxBadgeCategories entries, followed by CategoryEllipsis when more exist.
func BadgeCategories(categories []string) string {
	if len(categories) == 0 {
		return noCategories
	}
	if len(categories) <= MaxBadgeCategories {
		return strings.Join(categories, ", ")
	}
	return strings.Join(categories[:MaxBadgeCategories], ", ") + ", " + CategoryEllipsis
}

// VersionColor picks the fill of the version pill: green for a stable semantic
// version, orange for a pre-release and grey for anything that is not semver.
func VersionColor(version string) string {
	v, err := semver.NewVersion(version)
	if err != nil {
		return colorUnknown
	}
	if v.Prerelease() != "" {
		return colorPrerelease
	}
	return colorStable
}

func textWidth(s string) int {
	return 2*padding + charWidth*utf8.RuneCountInString(s)
}

func escape(s string) string {
	var b strings.Builder
	// strings.Builder never returns a write error
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
