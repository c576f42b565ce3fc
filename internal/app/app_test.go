package app

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"usermgmt/internal/config"
	"usermgmt/internal/services"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestNew_MemoryStore(t *testing.T) {
	a, err := New(config.Config{
		StoreDriver:      "memory",
		JWTSecret:        "test_jwt_secret",
		TokenTTL:         time.Hour,
		StoreCallTimeout: time.Second,
		BcryptCost:       bcrypt.MinCost,
		RateLimitMax:     100,
		RateLimitWindow:  time.Minute,
	})
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.db)
	assert.Nil(t, a.mqClient)
	assert.NoError(t, a.StartConsumer())

	resp, err := a.Fiber.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "memory", body["store"])
	assert.Equal(t, false, body["rabbitmq"])
}

func TestNew_UnknownDatabaseDriver(t *testing.T) {
	_, err := New(config.Config{StoreDriver: "gorm", DBDriver: "mysql"})
	assert.Error(t, err)
}

func TestLogUserEvent(t *testing.T) {
	body, err := json.Marshal(services.UserEvent{Type: services.EventUserCreated, UserID: "u-1", OccurredAt: time.Now()})
	require.NoError(t, err)

	assert.NoError(t, logUserEvent(amqp.Delivery{Body: body}))
	assert.Error(t, logUserEvent(amqp.Delivery{Body: []byte("{not json")}))
}
