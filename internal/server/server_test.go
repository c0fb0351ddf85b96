package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sahajbiz/voucherd/internal/bom"
	bomdomain "github.com/sahajbiz/voucherd/internal/bom/domain"
	"github.com/sahajbiz/voucherd/internal/catalog"
	catalogdomain "github.com/sahajbiz/voucherd/internal/catalog/domain"
	"github.com/sahajbiz/voucherd/internal/clock"
	"github.com/sahajbiz/voucherd/internal/config"
	"github.com/sahajbiz/voucherd/internal/observability"
	obsmetrics "github.com/sahajbiz/voucherd/internal/observability/metrics"
	"github.com/sahajbiz/voucherd/internal/providers/pdf"
	"github.com/sahajbiz/voucherd/internal/ratelimit"
	"github.com/sahajbiz/voucherd/internal/stock"
	stockdomain "github.com/sahajbiz/voucherd/internal/stock/domain"
	"github.com/sahajbiz/voucherd/internal/tax"
	taxdomain "github.com/sahajbiz/voucherd/internal/tax/domain"
	"github.com/sahajbiz/voucherd/internal/voucher"
	voucherdomain "github.com/sahajbiz/voucherd/internal/voucher/domain"
)

type testEnv struct {
	srv   *Server
	conn  *gorm.DB
	node  *snowflake.Node
	orgID snowflake.ID
}

// newTestEnv assembles the HTTP surface over an in-memory database the
// way main does, minus the listener and the exporters.
func newTestEnv(t *testing.T, defaultOrg int64) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&catalogdomain.Product{},
		&stockdomain.Warehouse{},
		&stockdomain.StockLevel{},
		&taxdomain.TaxProfile{},
		&voucherdomain.Voucher{},
		&voucherdomain.Line{},
		&bomdomain.BOM{},
		&bomdomain.BOMComponent{},
	))

	cfg := config.Config{
		AppName:       "voucherd",
		Environment:   "test",
		HomeStateCode: "27",
		Currency:      "INR",
		DefaultOrgID:  defaultOrg,
	}

	provider := noop.NewMeterProvider()
	httpMetrics, err := obsmetrics.NewHTTPMetrics(obsmetrics.Config{ServiceName: "voucherd"}, provider)
	require.NoError(t, err)
	appMetrics, err := obsmetrics.New(obsmetrics.Config{ServiceName: "voucherd"}, provider)
	require.NoError(t, err)

	var (
		srv  *Server
		node *snowflake.Node
	)
	app := fx.New(
		fx.NopLogger,
		fx.Supply(cfg, appMetrics, httpMetrics),
		fx.Provide(
			zap.NewNop,
			config.NewTunablesHolder,
			func() *gorm.DB { return conn },
			func() clock.Clock {
				return clock.NewFakeClock(time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC))
			},
			func() (*snowflake.Node, error) { return snowflake.NewNode(1) },
			func(m *obsmetrics.HTTPMetrics, log *zap.Logger) *gin.Engine {
				return NewEngine(observability.Config{ServiceName: "voucherd"}, m, log)
			},
			NewServer,
		),
		ratelimit.Module,
		tax.Module,
		catalog.Module,
		stock.Module,
		voucher.Module,
		bom.Module,
		pdf.Module,
		fx.Populate(&srv, &node),
	)
	require.NoError(t, app.Err())

	return &testEnv{srv: srv, conn: conn, node: node, orgID: node.Generate()}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader
	if raw, ok := body.(string); ok {
		reader = bytes.NewReader([]byte(raw))
	} else if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	e.srv.Engine().ServeHTTP(rec, req)

	var parsed map[string]any
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &parsed)
	}
	return rec, parsed
}

func (e *testEnv) orgHeader() map[string]string {
	return map[string]string{HeaderOrg: e.orgID.String()}
}

func errorField(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	payload, ok := body["error"].(map[string]any)
	require.True(t, ok, "expected error payload, got %v", body)
	return payload
}

func firstValidation(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	payload := errorField(t, body)
	items, ok := payload["errors"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, items)
	first, ok := items[0].(map[string]any)
	require.True(t, ok)
	return first
}

func data(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	d, ok := body["data"].(map[string]any)
	require.True(t, ok, "expected data payload, got %v", body)
	return d
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t, 0)

	rec, body := env.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestOrgHeaderRequiredWithoutDefault(t *testing.T) {
	env := newTestEnv(t, 0)

	rec, body := env.do(t, http.MethodPost, "/api/v1/products",
		map[string]any{"name": "Chair"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	first := firstValidation(t, body)
	assert.Equal(t, "org_id", first["field"])
	assert.Equal(t, "missing_org", first["code"])
}

func TestOrgHeaderInvalid(t *testing.T) {
	env := newTestEnv(t, 0)

	rec, body := env.do(t, http.MethodPost, "/api/v1/products",
		map[string]any{"name": "Chair"},
		map[string]string{HeaderOrg: "not-a-snowflake"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	first := firstValidation(t, body)
	assert.Equal(t, "invalid_org", first["code"])
}

func TestMissingOrgHeaderFallsBackToDefault(t *testing.T) {
	defaultOrg := snowflake.ID(7234567890123456)
	env := newTestEnv(t, int64(defaultOrg))

	rec, body := env.do(t, http.MethodPost, "/api/v1/products",
		map[string]any{"name": "Chair", "unit_price": 450000}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, defaultOrg.String(), data(t, body)["org_id"])
}

func TestMalformedBodyMapsToValidationError(t *testing.T) {
	env := newTestEnv(t, 0)

	rec, body := env.do(t, http.MethodPost, "/api/v1/products", "{not json", env.orgHeader())
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	payload := errorField(t, body)
	assert.Equal(t, "validation_error", payload["type"])
	first := firstValidation(t, body)
	assert.Equal(t, "request", first["field"])
	assert.Equal(t, "invalid_request", first["code"])
}

func TestDuplicateProductCodeMapsToConflict(t *testing.T) {
	env := newTestEnv(t, 0)

	rec, _ := env.do(t, http.MethodPost, "/api/v1/products",
		map[string]any{"code": "chair", "name": "Chair"}, env.orgHeader())
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := env.do(t, http.MethodPost, "/api/v1/products",
		map[string]any{"code": "chair", "name": "Another Chair"}, env.orgHeader())
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", errorField(t, body)["type"])
}

func TestUnknownVoucherMapsToNotFound(t *testing.T) {
	env := newTestEnv(t, 0)

	rec, body := env.do(t, http.MethodGet, "/api/v1/vouchers/12345", nil, env.orgHeader())
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errorField(t, body)["type"])
}

func TestFinalizeIncompleteVoucherMapsToValidation(t *testing.T) {
	env := newTestEnv(t, 0)

	rec, body := env.do(t, http.MethodPost, "/api/v1/vouchers",
		map[string]any{"type": "sales_invoice", "party_name": "Acme Traders"}, env.orgHeader())
	require.Equal(t, http.StatusOK, rec.Code)
	voucherID := data(t, body)["id"].(string)

	rec, body = env.do(t, http.MethodPost, "/api/v1/vouchers/"+voucherID+"/finalize", nil, env.orgHeader())
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	first := firstValidation(t, body)
	assert.Equal(t, "missing_product", first["code"])
	assert.Equal(t, "product", first["field"])
}

func TestFinalizedVoucherEditMapsToConflict(t *testing.T) {
	env := newTestEnv(t, 0)

	rec, body := env.do(t, http.MethodPost, "/api/v1/products",
		map[string]any{"code": "widget", "name": "Widget", "unit_price": 10000, "gst_rate": 18}, env.orgHeader())
	require.Equal(t, http.StatusOK, rec.Code)
	productID := data(t, body)["id"].(string)

	rec, body = env.do(t, http.MethodPost, "/api/v1/vouchers",
		map[string]any{"type": "sales_invoice", "party_name": "Acme Traders"}, env.orgHeader())
	require.Equal(t, http.StatusOK, rec.Code)
	voucherID := data(t, body)["id"].(string)
	lines := data(t, body)["lines"].([]any)
	lineID := lines[0].(map[string]any)["id"].(string)

	rec, _ = env.do(t, http.MethodPost, "/api/v1/vouchers/"+voucherID+"/lines/"+lineID+"/product",
		map[string]any{"product_id": productID}, env.orgHeader())
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = env.do(t, http.MethodPost, "/api/v1/vouchers/"+voucherID+"/finalize", nil, env.orgHeader())
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = env.do(t, http.MethodPatch, "/api/v1/vouchers/"+voucherID+"/lines/"+lineID,
		map[string]any{"quantity": 2}, env.orgHeader())
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", errorField(t, body)["type"])
}
