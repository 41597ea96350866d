package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/kitchin/config"
	"github.com/Ramsey-B/kitchin/pkg/mutations"
	"github.com/Ramsey-B/kitchin/pkg/replica"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})

func testConfig() *config.Config {
	return &config.Config{
		AppName:            "kitchin-api",
		Version:            "test",
		Port:               8080,
		AllowOrigins:       []string{"*"},
		AllowMethods:       []string{"GET", "POST"},
		StartupMaxAttempts: 1,
		ShutdownTimeout:    time.Second,
		KafkaBrokers:       []string{"kafka-1:9092", "kafka-2:9092"},
		KafkaChangesTopic:  "kitchin.changes",
		KafkaBatchSize:     10,
		KafkaBatchTimeout:  25,
		KafkaRequiredAcks:  -1,
		KafkaCompression:   "lz4",
		SingletonPolicy:    "select",
	}
}

func newRouterApp(t *testing.T) *App {
	t.Helper()

	a := New(testConfig(), testLogger)
	a.store = replica.NewStore(replica.NewMemoryBackend(), testLogger, replica.DefaultConfig())
	t.Cleanup(a.store.Close)
	a.contract = mutations.NewContract(a.store, testLogger)
	return a
}

func TestRouter_Health(t *testing.T) {
	a := newRouterApp(t)
	e := a.Router()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	a.health.SetReady(true)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_APIAndMetrics(t *testing.T) {
	a := newRouterApp(t)
	e := a.Router()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/meal-plans", strings.NewReader(`{"name":"Week 1"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, a.store.Snapshot().MealPlans, 1)
	assert.Equal(t, "Week 1", a.store.Snapshot().MealPlans[0].Name)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestKafkaConfig(t *testing.T) {
	kc := kafkaConfig(testConfig())

	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, kc.Brokers)
	assert.Equal(t, "kitchin.changes", kc.Topic)
	assert.Equal(t, 10, kc.BatchSize)
	assert.Equal(t, 25*time.Millisecond, kc.BatchTimeout)
	assert.Equal(t, -1, kc.RequiredAcks)
	assert.Equal(t, "lz4", kc.Compression)
}

func TestKafkaConfig_GroupPerInstance(t *testing.T) {
	cfg := testConfig()

	first := kafkaConfig(cfg)
	second := kafkaConfig(cfg)
	assert.True(t, strings.HasPrefix(first.GroupID, "kitchin-api-"))
	assert.NotEqual(t, first.GroupID, second.GroupID)

	cfg.KafkaConsumerGroup = "shared"
	assert.Equal(t, "shared", kafkaConfig(cfg).GroupID)
}

func TestRun_StartupFailureStops(t *testing.T) {
	cfg := testConfig()
	cfg.DatabaseDriver = "postgres"
	cfg.DatabaseHost = "127.0.0.1"
	cfg.DatabasePort = "1"
	cfg.DatabaseSSLMode = "disable"

	a := New(cfg, testLogger)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := a.Run(ctx)
	require.Error(t, err)
	assert.False(t, a.health.IsReady())
}
