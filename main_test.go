package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"productapi/internal/config"
	"productapi/internal/database"
	"productapi/internal/models"
	"productapi/internal/repositories"
	"productapi/internal/services"
)

// MockPublisher is a mock implementation of the RabbitMQ event publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(eventType string, payload interface{}) error {
	args := m.Called(eventType, payload)
	return args.Error(0)
}

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func sqliteConfig() config.Config {
	return config.Config{
		DatabaseDriver: database.DriverSQLite,
		DatabaseDSN:    database.MemoryDSN(uuid.NewString()),
	}
}

func openTestStore(t *testing.T, cfg config.Config) repositories.ProductRepository {
	t.Helper()
	repo, closeStore, err := openStore(cfg)
	require.NoError(t, err)
	t.Cleanup(closeStore)
	return repo
}

func TestRootCommand_FlagsOverrideEnvironment(t *testing.T) {
	t.Setenv(config.KeyAppPort, ":1111")
	t.Setenv(config.KeyDatabaseDriver, "postgres")

	v := viper.New()
	cmd := newRootCommand(v)
	require.NoError(t, cmd.ParseFlags([]string{"--port", ":2222", "--db-driver", "memory"}))

	cfg, err := config.Load(v, filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, ":2222", cfg.AppPort)
	assert.Equal(t, config.DriverMemory, cfg.DatabaseDriver)
}

func TestOpenStore(t *testing.T) {
	memory := openTestStore(t, config.Config{DatabaseDriver: config.DriverMemory})
	assert.IsType(t, &repositories.MemoryProductRepository{}, memory)

	gormRepo := openTestStore(t, sqliteConfig())
	assert.IsType(t, &repositories.GORMProductRepository{}, gormRepo)

	_, _, err := openStore(config.Config{DatabaseDriver: "oracle", DatabaseDSN: "x"})
	assert.Error(t, err)
}

func TestServerScenarios(t *testing.T) {
	stores := map[string]config.Config{
		"sqlite": sqliteConfig(),
		"memory": {DatabaseDriver: config.DriverMemory},
	}

	for name, cfg := range stores {
		t.Run(name, func(t *testing.T) {
			app := NewApp(openTestStore(t, cfg), nil)

			// An empty store has no product 0.
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/products/0", nil), -1)
			require.NoError(t, err)
			assert.Equal(t, http.StatusNotFound, resp.StatusCode)

			testProduct := map[string]interface{}{
				"name":        "Test Product",
				"price":       1.01,
				"stock":       10,
				"size":        "N/A",
				"color":       "N/A",
				"category":    "Misc",
				"description": "This is a test product",
				"available":   true,
			}
			body, _ := json.Marshal(testProduct)

			// Writes need a JSON content type.
			resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/products", bytes.NewReader(body)), -1)
			require.NoError(t, err)
			assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)

			req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			resp, err = app.Test(req, -1)
			require.NoError(t, err)
			require.Equal(t, http.StatusCreated, resp.StatusCode)
			location := resp.Header.Get("Location")
			require.NotEmpty(t, location)

			var created models.Product
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
			assert.Positive(t, created.ID)

			u, err := url.Parse(location)
			require.NoError(t, err)
			resp, err = app.Test(httptest.NewRequest(http.MethodGet, u.Path, nil), -1)
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			var fetched map[string]interface{}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&fetched))
			for key, value := range testProduct {
				assert.Equal(t, value, normalize(fetched[key]), "field %s does not match", key)
			}

			resp, err = app.Test(httptest.NewRequest(http.MethodDelete, u.Path, nil), -1)
			require.NoError(t, err)
			assert.Equal(t, http.StatusNoContent, resp.StatusCode)

			resp, err = app.Test(httptest.NewRequest(http.MethodGet, u.Path, nil), -1)
			require.NoError(t, err)
			assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		})
	}
}

func TestNewApp_PublishesProductEvents(t *testing.T) {
	mockPub := new(MockPublisher)
	isProduct := mock.AnythingOfType("*models.Product")
	mockPub.On("Publish", services.EventProductCreated, isProduct).Return(nil).Once()
	mockPub.On("Publish", services.EventProductRestocked, isProduct).Return(nil).Once()
	mockPub.On("Publish", services.EventProductDeleted, isProduct).Return(nil).Once()

	app := NewApp(openTestStore(t, sqliteConfig()), mockPub)

	body := []byte(`{"name":"Kettle","price":25,"stock":2,"size":"M","color":"red","category":"kitchen","available":true}`)
	req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	target := fmt.Sprintf("/products/%d", created.ID)
	resp, err = app.Test(httptest.NewRequest(http.MethodPut, target+"?stock=0", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, target, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// A second delete finds nothing and publishes nothing.
	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, target, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	mockPub.AssertExpectations(t)
	mockPub.AssertNumberOfCalls(t, "Publish", 3)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	var health map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "enabled", health["events"])
}

// normalize turns JSON numbers that hold whole values back into ints so they
// compare equal to the literals used in the request payload.
func normalize(v interface{}) interface{} {
	if f, ok := v.(float64); ok && f == float64(int(f)) {
		return int(f)
	}
	return v
}
