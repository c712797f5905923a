package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	auction "job-auction/internal/auctionService"
	"job-auction/internal/clock"
	"job-auction/internal/events"
	"job-auction/internal/repository"
	"job-auction/internal/server"
	"job-auction/services/auction/helpers"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// testEnv is a fully wired API over a chosen store with a controllable clock
type testEnv struct {
	router  *gin.Engine
	clock   *clock.Fake
	broker  *events.Broker
	service *auction.AuctionService
}

type storeFactory func(t *testing.T) repository.AuctionDB

func memoryStore(*testing.T) repository.AuctionDB {
	return repository.NewMemoryRepo()
}

func sqliteStore(t *testing.T) repository.AuctionDB {
	db, err := repository.OpenSQL(repository.DriverSQLite, "file::memory:")
	require.NoError(t, err)
	require.NoError(t, repository.MigrateUp(db.DB, repository.DriverSQLite))
	repo := repository.NewSQLRepo(db)
	t.Cleanup(func() { repo.Close() })
	return repo
}

// stores lists the backends every API scenario runs against
var stores = map[string]storeFactory{
	"memory": memoryStore,
	"sqlite": sqliteStore,
}

// SetupTestEnv initializes the router with the given store for integration testing.
func SetupTestEnv(t *testing.T, newStore storeFactory) *testEnv {
	gin.SetMode(gin.TestMode)
	fake := clock.NewFake(testStart)
	broker := events.NewBroker()
	service := auction.NewAuctionService(newStore(t),
		auction.WithClock(fake),
		auction.WithPublisher(broker),
		auction.WithConflictBackoff(time.Millisecond),
	)
	return &testEnv{
		router:  server.SetupRouter(service, broker),
		clock:   fake,
		broker:  broker,
		service: service,
	}
}

// ExecuteRequestAndParse executes an HTTP request on the router and returns the "data" member
// of the envelope for successful responses, or the whole envelope for failures.
func (e *testEnv) ExecuteRequestAndParse(t *testing.T, method, url string, body any, providerID string) (any, map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	default:
		var err error
		reqBody, err = json.Marshal(v)
		require.NoError(t, err, "failed to marshal body")
	}

	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if providerID != "" {
		req.Header.Set(helpers.ProviderHeader, providerID)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var envelope map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), "failed to unmarshal response")
	}
	return envelope["data"], envelope, w
}

// CreateAuctionJob creates an auction job and opens bidding for durationHours
func (e *testEnv) CreateAuctionJob(t *testing.T, basePrice int64, durationHours int) string {
	t.Helper()

	data, _, w := e.ExecuteRequestAndParse(t, "POST", "/jobs", helpers.CreateJobRequest{
		RequestType:     "auction",
		BasePrice:       basePrice,
		PickupAddress:   gofakeit.Street(),
		DeliveryAddress: gofakeit.Street(),
	}, "")
	require.Equal(t, 201, w.Code)
	jobID := data.(map[string]any)["job_id"].(string)

	_, _, w = e.ExecuteRequestAndParse(t, "POST", "/jobs/"+jobID+"/make_biddable", helpers.MakeBiddableRequest{DurationHours: durationHours}, "")
	require.Equal(t, 200, w.Code)
	return jobID
}

func amount(v int64) *int64 { return &v }
