package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/agrishop-billing/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	kolkata := time.FixedZone("IST", 5*3600+1800)

	got, err := ParseDate("2024-03-05", kolkata)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, kolkata), *got)

	got, err = ParseDate("", kolkata)
	assert.NoError(t, err)
	assert.Nil(t, got)

	_, err = ParseDate("05/03/2024", kolkata)
	assert.Error(t, err)
}

func TestGetUUIDParam(t *testing.T) {
	gin.SetMode(gin.TestMode)
	id := uuid.New()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	got, ok := GetUUIDParam(c, "id", "bill")
	assert.True(t, ok)
	assert.Equal(t, id, got)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: "nope"}}
	_, ok = GetUUIDParam(c, "id", "bill")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid bill ID")
}

func TestBillLinkPrefersBaseURL(t *testing.T) {
	gin.SetMode(gin.TestMode)
	bill := &entity.Bill{ID: uuid.New()}
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "http://internal:8080/api/v1/bills", nil)

	h := NewBillHandler(nil, "https://billing.example.in", "", nil)
	assert.Equal(t, "https://billing.example.in/api/v1/bills/"+bill.ID.String()+"/pdf", h.withLink(c, bill).PDFDownloadLink)

	h = NewBillHandler(nil, "", "", nil)
	c.Request.Header.Set("X-Forwarded-Proto", "javascript")
	assert.Equal(t, "http://internal:8080/api/v1/bills/"+bill.ID.String()+"/pdf", h.withLink(c, bill).PDFDownloadLink)
}
