package view

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/companyhub/internal/shared"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err, "Templates should parse without error")
	require.NotNil(t, engine)
	for _, page := range []string{
		"pages/login.html",
		"pages/error.html",
		"pages/dashboard/index.html",
		"pages/inventory/index.html",
		"pages/sales/index.html",
		"pages/production/index.html",
		"pages/alerts/index.html",
	} {
		assert.True(t, engine.Has(page), page)
	}
}

func TestRenderStatusWritesHeaderAndBody(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = engine.RenderStatus(rec, 404, "pages/error.html", TemplateData{Title: "Not found", Data: map[string]any{"Message": "gone"}})
	require.NoError(t, err)
	assert.Equal(t, 404, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "gone")
}

func TestExecuteUnknownPage(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.Error(t, engine.Execute(&buf, "pages/missing.html", TemplateData{}))
}

func TestFuncs(t *testing.T) {
	assert.Equal(t, "$1,234.50", Money(1234.5))
	assert.Equal(t, "$20.00", Money(decimal.RequireFromString("19.999")))
	assert.Equal(t, "12,000", Number(12000))
	assert.Equal(t, "In Progress", Humanize("in-progress"))
	assert.Equal(t, "Raw Materials", Humanize("raw_materials"))
	assert.Equal(t, "badge badge-danger", StatusClass("critical"))
	assert.Equal(t, "Mar 4, 2024", ShortDate("2024-03-04"))
	assert.Equal(t, "Mar 4, 2024", ShortDate("2024-03-04T10:11:12"))
	assert.Equal(t, "soon", ShortDate("soon"))
	assert.Equal(t, "50%", Percent(1, 2))
}

func TestTemplateDataIsAdmin(t *testing.T) {
	assert.False(t, TemplateData{}.IsAdmin())
	assert.True(t, TemplateData{User: &shared.SessionUser{Role: "admin"}}.IsAdmin())
	assert.False(t, TemplateData{User: &shared.SessionUser{Role: shared.RoleSalesStaff}}.IsAdmin())
}
