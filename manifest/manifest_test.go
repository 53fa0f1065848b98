package manifest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latedeployment/vellum/layout"
)

const sampleManifest = `
[page]
size = "a4"
orientation = "landscape"
margin = ["15mm", "20mm"]

[meta]
title = "季度简报"
author = "运营组"
keywords = "季度, 简报"

[fonts.Body]
src = "fonts/NotoSans-Regular.ttf"

[styles.Callout]
extends = "BodyText"
size = "11pt"
color = "#0f62fe"
align = "center"
space-before = "6pt"
padding = ["2mm"]
`

func TestParseManifest(t *testing.T) {
	m, err := Parse([]byte(sampleManifest))
	require.NoError(t, err)

	geo, err := m.Geometry()
	require.NoError(t, err)
	// a4 横向：297×210
	require.InDelta(t, 297.0, geo.Width, 1e-6)
	require.InDelta(t, 210.0, geo.Height, 1e-6)
	require.Equal(t, layout.Margin{Top: 15, Right: 20, Bottom: 15, Left: 20}, geo.Margin)

	meta := m.DocumentMeta()
	require.Equal(t, "季度简报", meta.Title)
	require.Equal(t, "运营组", meta.Author)
	require.Equal(t, "季度, 简报", meta.Keywords)

	require.Equal(t, map[string]string{"Body": "fonts/NotoSans-Regular.ttf"}, m.FontPaths())
}

func TestManifestStyleSheet(t *testing.T) {
	m, err := Parse([]byte(sampleManifest))
	require.NoError(t, err)

	sheet, err := m.StyleSheet()
	require.NoError(t, err)

	es, err := layout.NewResolver(sheet).Resolve("Callout", nil)
	require.NoError(t, err)
	require.InDelta(t, 11*layout.PtToMm, es.Size, 1e-9)
	require.Equal(t, layout.AlignCenter, es.Align)
	require.Equal(t, layout.Color{R: 0x0f, G: 0x62, B: 0xfe}, es.TextColor)
	require.InDelta(t, 6*layout.PtToMm, es.SpaceBefore, 1e-9)
	require.Equal(t, layout.Padding{Top: 2, Right: 2, Bottom: 2, Left: 2}, es.Padding)
}

func TestManifestDefaults(t *testing.T) {
	m, err := Parse(nil)
	require.NoError(t, err)

	geo, err := m.Geometry()
	require.NoError(t, err)
	require.InDelta(t, 215.9, geo.Width, 1e-6)
	require.InDelta(t, 19.05, geo.Margin.Top, 1e-6)
	require.True(t, math.Abs(geo.ContentWidth()-(215.9-2*19.05)) < 1e-6)

	sheet, err := m.StyleSheet()
	require.NoError(t, err)
	_, err = layout.NewResolver(sheet).Resolve(layout.StyleTitle, nil)
	require.NoError(t, err)
}

func TestManifestErrors(t *testing.T) {
	m, err := Parse([]byte("[page]\nsize = \"tabloid\""))
	require.NoError(t, err)
	_, err = m.Geometry()
	require.Error(t, err)

	m, err = Parse([]byte("[page]\norientation = \"sideways\""))
	require.NoError(t, err)
	_, err = m.Geometry()
	require.Error(t, err)

	m, err = Parse([]byte("[styles.Bad]\nextends = \"Nope\""))
	require.NoError(t, err)
	_, err = m.StyleSheet()
	require.Error(t, err)

	m, err = Parse([]byte("[styles.Bad]\ncolor = \"red\""))
	require.NoError(t, err)
	_, err = m.StyleSheet()
	require.Error(t, err)
}
