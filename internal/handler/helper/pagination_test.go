package helper

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	return c
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query    string
		wantPage int
		wantSize int
	}{
		{query: "", wantPage: 1, wantSize: 20},
		{query: "page=3&page_size=50", wantPage: 3, wantSize: 50},
		{query: "page=-1&page_size=abc", wantPage: 1, wantSize: 20},
		{query: "page_size=1000", wantPage: 1, wantSize: 100},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			page, size := ParsePagination(newContext(tt.query), 20)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantSize, size)
		})
	}
}

func TestOptionalUintQuery(t *testing.T) {
	v, err := OptionalUintQuery(newContext(""), "category_id")
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = OptionalUintQuery(newContext("category_id=4"), "category_id")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, uint(4), *v)

	_, err = OptionalUintQuery(newContext("category_id=x"), "category_id")
	assert.Error(t, err)
}
