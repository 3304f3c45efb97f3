package controllers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cnc-shop-api/config"
	"github.com/kendall-kelly/cnc-shop-api/services"
	"github.com/kendall-kelly/cnc-shop-api/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupAPI wires every route against a fresh in-memory database, the open
// pipeline policy and an in-memory design store.
func setupAPI(t *testing.T) (*gin.Engine, *gorm.DB, *services.MockS3Service) {
	t.Helper()
	testutil.RequireTestEnvironment(t)

	db := testutil.NewTestDB(t)
	config.SetConfig(&config.Config{GoEnv: "test", PipelinePolicy: "open"})

	mockS3 := services.NewMockS3Service()
	SetDesignFileStore(services.NewS3DesignStore(mockS3))
	t.Cleanup(func() {
		SetDesignFileStore(nil)
		config.SetConfig(nil)
	})

	router := testutil.NewTestRouter()
	RegisterRoutes(router.Group("/api/v1"))
	return router, db, mockS3
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w := testutil.PerformJSON(t, router, method, path, body)
	return w, testutil.DecodeResponse(t, w)
}

func dataMap(t *testing.T, response map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok, "expected object data, got %v", response["data"])
	return data
}

func dataList(t *testing.T, response map[string]interface{}) []interface{} {
	t.Helper()
	data, ok := response["data"].([]interface{})
	require.True(t, ok, "expected list data, got %v", response["data"])
	return data
}

// assertMoney compares a JSON decimal (serialised as a string) with want.
func assertMoney(t *testing.T, want string, got interface{}) {
	t.Helper()
	s, ok := got.(string)
	require.True(t, ok, "expected decimal string, got %T %v", got, got)
	gotDec, err := decimal.NewFromString(s)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString(want).Equal(gotDec), "expected %s, got %s", want, s)
}
