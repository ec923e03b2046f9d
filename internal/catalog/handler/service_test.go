package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "barbershop/pkg/errors"
	"barbershop/pkg/logger"
	"barbershop/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCatalogService struct {
	services []*model.Service
}

func (m *mockCatalogService) GetService(ctx context.Context, id string) (*model.Service, error) {
	for _, s := range m.services {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, apperrors.NotFoundWithID("Service", id)
}

func (m *mockCatalogService) ListActiveServices(ctx context.Context) ([]*model.Service, error) {
	return m.services, nil
}

func newRouter() *httprouter.Router {
	svc := &mockCatalogService{services: []*model.Service{
		{ID: "65f000000000000000000001", Name: "Haircut", DurationMinutes: 30, Price: decimal.RequireFromString("40.00"), Active: true},
	}}
	router := httprouter.New()
	NewCatalogHandler(svc, logger.Discard()).RegisterRoutes(router)
	return router
}

func TestList(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/services", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data       []model.Service `json:"data"`
		TotalCount int             `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.TotalCount)
	assert.Equal(t, "Haircut", resp.Data[0].Name)
	assert.True(t, decimal.RequireFromString("40").Equal(resp.Data[0].Price))
}

func TestGetByID(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/services/id/65f000000000000000000001", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	newRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/services/id/65f0000000000000000000ff", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apperrors.CodeNotFound, body.Code)
}
