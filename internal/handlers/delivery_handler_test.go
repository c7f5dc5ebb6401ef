package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/deliverytrujillo/dispatch/internal/model"
	"github.com/deliverytrujillo/dispatch/internal/services"
	xhttp "github.com/deliverytrujillo/dispatch/pkg/http"
)

type MockDeliveryService struct {
	mock.Mock
}

func (m *MockDeliveryService) Create(ctx context.Context, p model.DeliveryCreateRequest) (*model.Delivery, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Delivery), args.Error(1)
}

func (m *MockDeliveryService) List(ctx context.Context, f model.DeliveryFilter) ([]*model.Delivery, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.Delivery), args.Get(1).(int64), args.Error(2)
}

func (m *MockDeliveryService) Get(ctx context.Context, id int64) (*model.Delivery, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Delivery), args.Error(1)
}

func (m *MockDeliveryService) UpdateStatus(ctx context.Context, ids []int64, status model.DeliveryStatus) (*services.StatusUpdateResult, error) {
	args := m.Called(ctx, ids, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.StatusUpdateResult), args.Error(1)
}

func (m *MockDeliveryService) Export(ctx context.Context, f model.DeliveryFilter, format string) (*services.ExportFile, error) {
	args := m.Called(ctx, f, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ExportFile), args.Error(1)
}

func setupTestContext(method, path string, body []byte) *xhttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	if body != nil {
		ctx.Request.SetBody(body)
	}
	return ctx
}

func TestDeliveryHandler_CreateDelivery(t *testing.T) {
	t.Run("successful creation", func(t *testing.T) {
		svc := new(MockDeliveryService)
		handler := NewDeliveryHandler(svc)

		reqBody := createDeliveryRequest{
			CustomerName:  "María Torres",
			CustomerPhone: "+51 944 123 456",
			Street:        "Calle San Andrés 457",
			District:      "Trujillo Centro",
			PackageWeight: 2.5,
			Priority:      3,
		}
		bodyBytes, _ := json.Marshal(reqBody)

		expected := &model.Delivery{
			ID:             1,
			TrackingNumber: "TRU2506151234",
			Status:         model.DeliveryStatusPending,
		}

		svc.On("Create", mock.Anything, mock.MatchedBy(func(p model.DeliveryCreateRequest) bool {
			return p.CustomerName == "María Torres" && p.District == "Trujillo Centro"
		})).Return(expected, nil)

		ctx := setupTestContext("POST", "/api/v1/deliveries", bodyBytes)
		handler.CreateDelivery(ctx)

		assert.Equal(t, 201, ctx.Response.StatusCode())

		var response model.Delivery
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
		assert.Equal(t, "TRU2506151234", response.TrackingNumber)
		assert.Equal(t, model.DeliveryStatusPending, response.Status)

		svc.AssertExpectations(t)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		svc := new(MockDeliveryService)
		handler := NewDeliveryHandler(svc)

		ctx := setupTestContext("POST", "/api/v1/deliveries", []byte("not json"))
		handler.CreateDelivery(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})

	t.Run("validation failure", func(t *testing.T) {
		svc := new(MockDeliveryService)
		handler := NewDeliveryHandler(svc)

		svc.On("Create", mock.Anything, mock.Anything).
			Return(nil, assert.AnError)

		ctx := setupTestContext("POST", "/api/v1/deliveries", []byte("{}"))
		handler.CreateDelivery(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})
}

func TestDeliveryHandler_ListDeliveries(t *testing.T) {
	svc := new(MockDeliveryService)
	handler := NewDeliveryHandler(svc)

	items := []*model.Delivery{{ID: 1}, {ID: 2}}
	svc.On("List", mock.Anything, mock.MatchedBy(func(f model.DeliveryFilter) bool {
		return f.Status != nil && *f.Status == model.DeliveryStatusPending &&
			f.District != nil && *f.District == "Huanchaco" &&
			f.Limit == 10 && f.Desc
	})).Return(items, int64(2), nil)

	ctx := setupTestContext("GET", "/api/v1/deliveries?status=pending&district=Huanchaco&limit=10&order=desc", nil)
	handler.ListDeliveries(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())

	var response deliveryListResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
	assert.Len(t, response.Items, 2)
	assert.Equal(t, int64(2), response.Total)

	svc.AssertExpectations(t)
}

func TestDeliveryHandler_GetDelivery(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc := new(MockDeliveryService)
		handler := NewDeliveryHandler(svc)

		svc.On("Get", mock.Anything, int64(7)).Return(&model.Delivery{ID: 7}, nil)

		ctx := setupTestContext("GET", "/api/v1/deliveries/7", nil)
		ctx.SetUserValue("id", "7")
		handler.GetDelivery(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
	})

	t.Run("not found", func(t *testing.T) {
		svc := new(MockDeliveryService)
		handler := NewDeliveryHandler(svc)

		svc.On("Get", mock.Anything, int64(99)).Return(nil, services.ErrNotFound)

		ctx := setupTestContext("GET", "/api/v1/deliveries/99", nil)
		ctx.SetUserValue("id", "99")
		handler.GetDelivery(ctx)

		assert.Equal(t, 404, ctx.Response.StatusCode())
	})

	t.Run("bad id", func(t *testing.T) {
		handler := NewDeliveryHandler(new(MockDeliveryService))

		ctx := setupTestContext("GET", "/api/v1/deliveries/abc", nil)
		ctx.SetUserValue("id", "abc")
		handler.GetDelivery(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})
}

func TestDeliveryHandler_UpdateDeliveryStatus(t *testing.T) {
	svc := new(MockDeliveryService)
	handler := NewDeliveryHandler(svc)

	svc.On("UpdateStatus", mock.Anything, []int64{1, 2}, model.DeliveryStatusDelivered).
		Return(&services.StatusUpdateResult{Updated: []int64{1, 2}}, nil)

	body, _ := json.Marshal(updateStatusRequest{
		DeliveryIDs: []int64{1, 2},
		Status:      "delivered",
	})
	ctx := setupTestContext("POST", "/api/v1/deliveries/status", body)
	handler.UpdateDeliveryStatus(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())

	var response services.StatusUpdateResult
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
	assert.Equal(t, []int64{1, 2}, response.Updated)
}

func TestDeliveryHandler_ExportDeliveries(t *testing.T) {
	svc := new(MockDeliveryService)
	handler := NewDeliveryHandler(svc)

	file := &services.ExportFile{
		Filename:    "deliveries_20250615_120000.csv",
		ContentType: "text/csv; charset=utf-8",
		Body:        []byte("id,tracking_number\n"),
	}
	svc.On("Export", mock.Anything, mock.Anything, "csv").Return(file, nil)

	ctx := setupTestContext("GET", "/api/v1/deliveries/export?format=csv", nil)
	handler.ExportDeliveries(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())
	assert.Equal(t, "text/csv; charset=utf-8", string(ctx.Response.Header.ContentType()))
	assert.Contains(t, string(ctx.Response.Header.Peek("Content-Disposition")), file.Filename)
	assert.Equal(t, "id,tracking_number\n", string(ctx.Response.Body()))
}
