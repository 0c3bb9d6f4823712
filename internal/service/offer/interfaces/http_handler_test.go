package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"gpoffer/internal/service/offer/application"
	"gpoffer/internal/service/offer/domain"
	"gpoffer/internal/service/offer/infrastructure"
	"gpoffer/internal/service/offer/infrastructure/adapter"
	pointsapp "gpoffer/internal/service/points/application"
	pointsinfra "gpoffer/internal/service/points/infrastructure"
)

func newTestServer(t *testing.T) (*httptest.Server, *pointsapp.PointsService, *adapter.StaticKYCProvider) {
	t.Helper()
	tracer := noop.NewTracerProvider().Tracer("test")

	offers := infrastructure.NewMemoryOfferRepository()
	points := pointsapp.NewPointsService(pointsinfra.NewMemoryAccountRepository(), tracer)
	kyc := adapter.NewStaticKYCProvider()

	service := application.NewOfferApplicationService(
		offers,
		infrastructure.NewMemoryParticipantRepository(offers),
		infrastructure.NewMemorySettingsRepository(),
		adapter.NewPointsLocalAdapter(points),
		kyc,
		adapter.NewLocalOfferLocker(),
		adapter.SystemClock{},
		nil,
		tracer,
	)

	mux := http.NewServeMux()
	NewOfferHandler(service).RegisterRoutes(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, points, kyc
}

func createOfferHTTP(t *testing.T, server *httptest.Server) string {
	t.Helper()
	body := `{
		"sellerId": "seller-1",
		"title": "bulk order",
		"basePrice": 299,
		"tiers": [{"minParticipants": 10, "unitPrice": 289}],
		"deadline": "` + time.Now().UTC().Add(72*time.Hour).Format(time.RFC3339) + `",
		"minimumJoiners": 0
	}`
	resp, err := http.Post(server.URL+"/offers/create", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out struct {
		Offer struct {
			ID string `json:"id"`
		} `json:"offer"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.Offer.ID)
	return out.Offer.ID
}

func TestCreateAndGetOffer(t *testing.T) {
	server, _, _ := newTestServer(t)
	id := createOfferHTTP(t, server)

	resp, err := http.Get(server.URL + "/offers/get?id=" + id)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Offer struct {
			Status string `json:"status"`
		} `json:"offer"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, string(domain.StatusDraft), out.Offer.Status)
}

func TestCreateOfferInvalidTiers(t *testing.T) {
	server, _, _ := newTestServer(t)

	body := `{
		"sellerId": "seller-1",
		"title": "bad",
		"basePrice": 100,
		"tiers": [{"minParticipants": 10, "unitPrice": 150}],
		"deadline": "` + time.Now().UTC().Add(time.Hour).Format(time.RFC3339) + `"
	}`
	resp, err := http.Post(server.URL+"/offers/create", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetOfferNotFoundStatus(t *testing.T) {
	server, _, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/offers/get?id=missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSubmitWithoutPointsIsForbidden(t *testing.T) {
	server, _, kyc := newTestServer(t)
	kyc.SetStatus("seller-1", domain.KYCVerified)
	id := createOfferHTTP(t, server)

	resp, err := http.Post(server.URL+"/offers/submit?id="+id, "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestJoinLifecycleOverHTTP(t *testing.T) {
	server, points, kyc := newTestServer(t)
	kyc.SetStatus("seller-1", domain.KYCVerified)
	require.NoError(t, points.Credit(context.Background(), "seller-1", 100, "top up", ""))

	id := createOfferHTTP(t, server)

	// 在 Draft 状态加入：409
	resp, err := http.Post(server.URL+"/offers/join?id="+id+"&userId=buyer-1", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	for _, path := range []string{"/offers/submit?id=" + id, "/admin/offers/approve?id=" + id} {
		resp, err = http.Post(server.URL+path, "application/json", nil)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, err = http.Post(server.URL+"/offers/join?id="+id+"&userId=buyer-1", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var join struct {
		AlreadyJoined bool    `json:"alreadyJoined"`
		Participants  int     `json:"participants"`
		UnitPrice     float64 `json:"unitPrice"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&join))
	assert.False(t, join.AlreadyJoined)
	assert.Equal(t, 1, join.Participants)
	assert.Equal(t, 299.0, join.UnitPrice)
}

func TestTransitionRequiresPost(t *testing.T) {
	server, _, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/offers/submit?id=whatever")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestSettingsRoundTripOverHTTP(t *testing.T) {
	server, _, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/admin/settings")
	require.NoError(t, err)
	var settings domain.PlatformSettings
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&settings))
	resp.Body.Close()
	assert.Equal(t, int64(15), settings.PublishCost)

	settings.PublishCost = 20
	payload, err := json.Marshal(settings)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPut, server.URL+"/admin/settings", strings.NewReader(string(payload)))
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	var updated domain.PlatformSettings
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
	resp.Body.Close()
	assert.Equal(t, int64(20), updated.PublishCost)
	assert.Equal(t, settings.Version+1, updated.Version)
}

func TestHealthz(t *testing.T) {
	server, _, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
