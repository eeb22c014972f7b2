package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeleesuh/delegate-ai/gateways/api/clients/analyzer"
	"github.com/joeleesuh/delegate-ai/gateways/api/clients/recall"
	"github.com/joeleesuh/delegate-ai/gateways/api/clients/transcribe"
	"github.com/joeleesuh/delegate-ai/services/meeting/entity"
	"github.com/joeleesuh/delegate-ai/services/meeting/storage"
	"github.com/joeleesuh/delegate-ai/services/meeting/usecase"
)

func testRouter(t *testing.T, processSecret string) chi.Router {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	usc := usecase.New(
		storage.NewMemory(),
		recall.NewSimulated(),
		transcribe.NewSelector(transcribe.NewSimulated()),
		analyzer.NewSimulated(),
		usecase.DefaultPolicies(),
	)

	r := chi.NewRouter()
	New(usc, processSecret, log).RegisterRoutes(r)
	return r
}

func doJSON(t *testing.T, r chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func createMeeting(t *testing.T, r chi.Router, sourceLink, displayName string) string {
	t.Helper()

	rec := doJSON(t, r, http.MethodPost, "/meetings", map[string]string{
		"source_link":  sourceLink,
		"display_name": displayName,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp CreateMeetingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

func TestHealthCheck(t *testing.T) {
	r := testRouter(t, "")

	rec := doJSON(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "running")
}

func TestCreateMeeting(t *testing.T) {
	r := testRouter(t, "")

	rec := doJSON(t, r, http.MethodPost, "/meetings", map[string]string{
		"source_link": "https://zoom.us/j/123",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp CreateMeetingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, entity.StatusPending, resp.Status)
}

func TestCreateMeetingMissingSourceLink(t *testing.T) {
	r := testRouter(t, "")

	rec := doJSON(t, r, http.MethodPost, "/meetings", map[string]string{
		"display_name": "No Link",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "source_link is required")

	// Nothing was persisted for the rejected request.
	list := doJSON(t, r, http.MethodGet, "/meetings", nil)
	require.Equal(t, http.StatusOK, list.Code)
	var listResp ListMeetingsResponse
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &listResp))
	assert.Empty(t, listResp.Meetings)
}

func TestCreateMeetingInvalidBody(t *testing.T) {
	r := testRouter(t, "")

	req := httptest.NewRequest(http.MethodPost, "/meetings", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetMeetingNotFound(t *testing.T) {
	r := testRouter(t, "")

	rec := doJSON(t, r, http.MethodGet, "/meetings/unknown-id", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListMeetingsNewestFirst(t *testing.T) {
	r := testRouter(t, "")

	createMeeting(t, r, "https://zoom.us/j/1", "First")
	createMeeting(t, r, "https://zoom.us/j/2", "Second")

	rec := doJSON(t, r, http.MethodGet, "/meetings", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ListMeetingsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Meetings, 2)
	assert.Equal(t, "Second", resp.Meetings[0].DisplayName)
	assert.Equal(t, "First", resp.Meetings[1].DisplayName)
}

func TestProcessMeeting(t *testing.T) {
	r := testRouter(t, "")
	id := createMeeting(t, r, "https://zoom.us/j/123", "Town Hall")

	rec := doJSON(t, r, http.MethodPost, "/meetings/"+id+"/process", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var m entity.Meeting
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, entity.StatusCompleted, m.Status)
	assert.NotEmpty(t, m.Transcript)
	require.NotNil(t, m.Analysis)
	assert.NotEmpty(t, m.Analysis.ExecutiveSummary)
	assert.NotNil(t, m.CompletedAt)
}

func TestProcessMeetingAlreadyCompleted(t *testing.T) {
	r := testRouter(t, "")
	id := createMeeting(t, r, "https://zoom.us/j/123", "Town Hall")

	first := doJSON(t, r, http.MethodPost, "/meetings/"+id+"/process", nil)
	require.Equal(t, http.StatusOK, first.Code)

	second := doJSON(t, r, http.MethodPost, "/meetings/"+id+"/process", nil)
	assert.Equal(t, http.StatusBadRequest, second.Code)
	assert.Contains(t, second.Body.String(), "already processed")
}

func TestProcessMeetingNotFound(t *testing.T) {
	r := testRouter(t, "")

	rec := doJSON(t, r, http.MethodPost, "/meetings/unknown-id/process", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProcessMeetingRequiresToken(t *testing.T) {
	const secret = "test-secret"
	r := testRouter(t, secret)
	id := createMeeting(t, r, "https://zoom.us/j/123", "Town Hall")

	// No token.
	rec := doJSON(t, r, http.MethodPost, "/meetings/"+id+"/process", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Token signed with the wrong secret.
	badToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{}).SignedString([]byte("wrong"))
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/meetings/"+id+"/process", nil)
	req.Header.Set("Authorization", "Bearer "+badToken)
	bad := httptest.NewRecorder()
	r.ServeHTTP(bad, req)
	assert.Equal(t, http.StatusUnauthorized, bad.Code)

	// Valid token.
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{}).SignedString([]byte(secret))
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, "/meetings/"+id+"/process", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	ok := httptest.NewRecorder()
	r.ServeHTTP(ok, req)
	assert.Equal(t, http.StatusOK, ok.Code)
}

func TestTranscribeUpload(t *testing.T) {
	r := testRouter(t, "")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("audio", "meeting.mp3")
	require.NoError(t, err)
	_, err = fw.Write([]byte("fake audio"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/transcribe", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp TranscribeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, transcribe.SampleTranscript, resp.Transcript)
}

func TestTranscribeWithoutFile(t *testing.T) {
	r := testRouter(t, "")

	req := httptest.NewRequest(http.MethodPost, "/transcribe", strings.NewReader("no form here"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no audio file provided")
}
