package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquidolado/aqui/internal/client/api"
	"github.com/aquidolado/aqui/internal/client/feed"
	"github.com/aquidolado/aqui/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestAPI(t *testing.T, handler http.HandlerFunc) *api.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return api.NewClient(srv.URL, srv.Client())
}

func TestFetchAdsBuildsQuery(t *testing.T) {
	var gotQuery string
	client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/ads", r.URL.Path)
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(Page[Ad]{
			Content:       []Ad{{ID: 1, Title: "Sofá", UserName: "Ana"}},
			TotalElements: 1,
			TotalPages:    1,
			Last:          true,
		})
	})

	res, err := NewAdService(client).FetchAds(context.Background(), feed.Filters{
		CommunityID: 7,
		Types:       []string{"SALE_TRADE", "RENT"},
		Search:      "sofá",
		Sort:        "price_asc",
		Page:        2,
		Size:        10,
	})
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "communityId=7")
	assert.Contains(t, gotQuery, "types=SALE_TRADE%2CRENT")
	assert.Contains(t, gotQuery, "sort=price_asc")
	assert.Contains(t, gotQuery, "page=2")
	assert.Contains(t, gotQuery, "size=10")

	require.Len(t, res.Ads, 1)
	assert.Equal(t, "Ana", res.Ads[0].OwnerName)
	assert.True(t, res.Last)
}

func TestCreateAdMultipart(t *testing.T) {
	client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/ads", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(32<<20))

		var payload AdPayload
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("ad")), &payload))
		assert.Equal(t, "Sofá", payload.Title)
		assert.Equal(t, int64(7), payload.CommunityID)

		files := r.MultipartForm.File["images"]
		require.Len(t, files, 2)
		assert.Equal(t, "front.jpg", files[0].Filename)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Ad{ID: 42, Title: payload.Title})
	})

	price := int64(35000)
	ad, err := NewAdService(client).Create(context.Background(), AdPayload{
		CommunityID: 7,
		Type:        "SALE_TRADE",
		Title:       "Sofá",
		Price:       &price,
	}, []ImageFile{
		{Filename: "front.jpg", ContentType: "image/jpeg", Body: strings.NewReader("jpegdata")},
		{Filename: "side.jpg", ContentType: "image/jpeg", Body: strings.NewReader("jpegdata")},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), ad.ID)
}

func TestCreateAdRejectsTooManyImages(t *testing.T) {
	client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	images := make([]ImageFile, MaxAdImages+1)
	for i := range images {
		images[i] = ImageFile{Filename: "a.jpg", Body: strings.NewReader("x")}
	}
	_, err := NewAdService(client).Create(context.Background(), AdPayload{Title: "x"}, images)
	require.Error(t, err)
}

func TestListMineDecoratesAdminFlags(t *testing.T) {
	client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/communities":
			json.NewEncoder(w).Encode([]CommunityInfo{{ID: 1, Name: "Vila Clara"}, {ID: 2, Name: "Jardim Azul"}})
		case "/api/communities/admin":
			json.NewEncoder(w).Encode([]CommunityInfo{{ID: 2, Name: "Jardim Azul", AccessCode: "ABCD2345"}})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	list, err := NewCommunityService(client).ListMine(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.False(t, list[0].IsAdmin)
	assert.True(t, list[1].IsAdmin)
}

func TestResolveAdCommunity(t *testing.T) {
	client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/ads/42", r.URL.Path)
		json.NewEncoder(w).Encode(Ad{ID: 42, CommunityID: 9})
	})

	id, err := NewAdService(client).ResolveAdCommunity(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)
}

func TestMetricsBestEffortSwallowsFailures(t *testing.T) {
	client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"INTERNAL"}`, http.StatusInternalServerError)
	})

	// Must not panic or surface anything.
	m := NewMetricsService(client, testLogger())
	m.ContactClick(context.Background(), 42, 7)
	m.Event(context.Background(), "AD_SHARE", nil)
}

func TestReportAdSurfacesErrors(t *testing.T) {
	client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "VALIDATION", "message": "reason is required"})
	})

	err := NewMetricsService(client, testLogger()).ReportAd(context.Background(), 42, "")
	require.Error(t, err)
	assert.True(t, api.IsStatus(err, http.StatusBadRequest))
}
