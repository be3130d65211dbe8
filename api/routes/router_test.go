package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceramicarte/preventivi-backend/internal/catalog"
	"github.com/ceramicarte/preventivi-backend/internal/quotes"
	"github.com/ceramicarte/preventivi-backend/internal/render"
	"github.com/ceramicarte/preventivi-backend/internal/translate"
	pkgauth "github.com/ceramicarte/preventivi-backend/pkg/auth"
	"github.com/ceramicarte/preventivi-backend/pkg/config"
	"github.com/ceramicarte/preventivi-backend/pkg/db"
	"github.com/ceramicarte/preventivi-backend/pkg/db/models"
	"github.com/ceramicarte/preventivi-backend/pkg/logger"
	"github.com/ceramicarte/preventivi-backend/pkg/metrics"
	"github.com/ceramicarte/preventivi-backend/pkg/types"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "development", Port: "8080"},
		JWT: config.JWTConfig{
			Secret:   "test-secret",
			Issuer:   "preventivi-admin",
			TokenTTL: time.Hour,
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"*"}},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	client, err := db.New(
		config.DBConfig{DSN: dsn},
		config.FeatureFlagsConfig{UseSQLite: true},
		false,
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.DB.AutoMigrate(&models.Product{}, &models.Package{}, &models.Quote{}))

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	reg := metrics.New()

	catalogSvc := catalog.NewService(client, logg)
	gateway := translate.NewService(translate.Options{Log: logg})
	localizer := quotes.NewLocalizer(gateway, logg, reg)
	manager := quotes.NewManager(time.Hour, logg)
	renderer := render.NewHTTPRenderer("", 5*time.Second, nil)
	quoteSvc := quotes.NewService(client, manager, catalogSvc, localizer, renderer, reg, logg)

	return NewRouter(testConfig(), logg, reg, client, nil, catalogSvc, quoteSvc)
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, err := pkgauth.NewAccessToken(testConfig().JWT, "admin@ceramicarte.it")
	require.NoError(t, err)
	return token
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPublicCatalogIsOpen(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/preventivi/products", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/preventivi/packages", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/admin/v1/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/admin/v1/drafts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDevTokenMint(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/admin/v1/auth/token", "", map[string]string{
		"subject": "admin@ceramicarte.it",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var body types.SuccessEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	token := body.Data.(map[string]any)["token"].(string)
	require.NotEmpty(t, token)

	claims, err := pkgauth.ParseAccessToken(testConfig().JWT, token)
	require.NoError(t, err)
	assert.Equal(t, "admin@ceramicarte.it", claims.Subject)
}

func TestDraftWorkflowOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	token := adminToken(t)

	w := doJSON(t, router, http.MethodPost, "/api/admin/v1/products", token, map[string]any{
		"name":     "Vaso",
		"category": "ceramica",
		"price":    "12.50",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var productResp types.SuccessEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&productResp))
	productID := productResp.Data.(map[string]any)["id"].(string)

	w = doJSON(t, router, http.MethodPost, "/api/admin/v1/drafts", token, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var draftResp types.SuccessEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&draftResp))
	sessionID := draftResp.Data.(map[string]any)["session_id"].(string)

	base := "/api/admin/v1/drafts/" + sessionID

	w = doJSON(t, router, http.MethodPost, base+"/items", token, map[string]any{
		"product_id": productID,
		"quantity":   2,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPut, base+"/details", token, map[string]any{
		"customer_name": "Mario Rossi",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, base+"/save", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var saved types.SuccessEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&saved))
	number := saved.Data.(map[string]any)["quote_number"].(string)
	assert.Contains(t, number, "PRV-")

	// Export before finalize is a state violation.
	w = doJSON(t, router, http.MethodPost, base+"/export?format=pdf", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestDraftNotFound(t *testing.T) {
	router := newTestRouter(t)
	token := adminToken(t)

	w := doJSON(t, router, http.MethodGet, "/api/admin/v1/drafts/8d7bbd49-5bd9-4d71-a7a9-84f8e60b7b5a", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
