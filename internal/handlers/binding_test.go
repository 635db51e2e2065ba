package handlers

import (
	"bytes"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shgbook/shgbook-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func newJSONContext(body string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c
}

func TestBindNestedOrFlatNested(t *testing.T) {
	c := newJSONContext(`{"borrower": {"name": "Lakshmi Devi", "phone": "9876543210"}}`)

	var borrower models.Borrower
	assert.NoError(t, BindNestedOrFlat(c, "borrower", &borrower))
	assert.Equal(t, "Lakshmi Devi", borrower.Name)
	assert.Equal(t, "9876543210", borrower.Phone)
}

func TestBindNestedOrFlatFlat(t *testing.T) {
	c := newJSONContext(`{"name": "Lakshmi Devi", "phone": "9876543210"}`)

	var borrower models.Borrower
	assert.NoError(t, BindNestedOrFlat(c, "borrower", &borrower))
	assert.Equal(t, "Lakshmi Devi", borrower.Name)
}

func TestBindNestedOrFlatInvalidJSON(t *testing.T) {
	c := newJSONContext(`{not json`)

	var borrower models.Borrower
	assert.Error(t, BindNestedOrFlat(c, "borrower", &borrower))
}

func TestParseDate(t *testing.T) {
	plain, err := parseDate("2025-03-15")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), plain)

	ts, err := parseDate("2025-03-15T09:30:00Z")
	assert.NoError(t, err)
	assert.Equal(t, 9, ts.Hour())

	_, err = parseDate("15/03/2025")
	assert.Error(t, err)
}
