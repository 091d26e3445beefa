// internal/infrastructure/handler/integration_test.go
package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/damon-houk/freight-ops-tracker/internal/application/service"
	"github.com/damon-houk/freight-ops-tracker/internal/domain/entity"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/db"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/handler"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/metrics"
	"github.com/damon-houk/freight-ops-tracker/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// dates relative to the real clock, since the services read time.Now
type calendar struct {
	today time.Time
}

func newCalendar() calendar {
	return calendar{today: entity.Day(time.Now())}
}

func (c calendar) in(days int) string {
	return c.today.AddDate(0, 0, days).Format(entity.DateLayout)
}

// setupTestServer wires the full stack on a temporary badger store and a fixed rate table
func setupTestServer(t *testing.T, rates mocks.StaticRateSource) *httptest.Server {
	t.Helper()
	metrics.Init()
	log := logger.NewJSONLogger(io.Discard, logger.ErrorLevel)

	badgerDB, err := db.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { badgerDB.Close() })

	shipmentRepo := db.NewBadgerShipmentRepository(badgerDB, log)
	rateRepo, err := db.NewBadgerRateHistoryRepository(badgerDB)
	require.NoError(t, err)
	t.Cleanup(func() { rateRepo.Close() })
	alertRepo, err := db.NewBadgerAlertHistoryRepository(badgerDB)
	require.NoError(t, err)
	t.Cleanup(func() { alertRepo.Close() })

	resolver := service.NewRateResolver(rates, rateRepo, log)
	advisor := service.NewDayAdvisor(resolver, false, log)
	generator := service.NewAlertGenerator(advisor, log)
	shipments := service.NewShipmentService(shipmentRepo, alertRepo, advisor, generator, log)
	alerts := service.NewAlertService(shipmentRepo, alertRepo, generator, log)
	trm := service.NewTRMService(resolver, advisor, rateRepo, log)

	router := handler.NewRouter(handler.Handlers{
		Shipments: handler.NewShipmentHandler(shipments, log),
		Alerts:    handler.NewAlertHandler(alerts, log),
		TRM:       handler.NewTRMHandler(trm, log),
		Export:    handler.NewExportHandler(shipments, trm, log),
	}, log)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestShipmentLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cal := newCalendar()
	server := setupTestServer(t, mocks.StaticRateSource{
		cal.in(6): 3900.10,
		cal.in(7): 3950.25,
		cal.in(8): 3920.00,
	})

	// arrival a week out: certification is due today
	resp := doJSON(t, http.MethodPost, server.URL+"/operations", handler.RegisterShipmentRequest{
		ID:                "A1",
		Mode:              "Marítimo",
		Direction:         "Importación",
		Client:            "Acme",
		ArrivalDate:       cal.in(7),
		CertificationDate: cal.in(-1),
		ReleaseNote:       "lista",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var created handler.ShipmentResponse
	decode(t, resp, &created)
	assert.Equal(t, "A1", created.ID)
	assert.Equal(t, "Maritime", created.Mode)
	assert.Equal(t, "Overdue", created.Certification.Status)
	assert.Equal(t, "Done", created.Release.Status)

	resp = doJSON(t, http.MethodPost, server.URL+"/operations", handler.RegisterShipmentRequest{
		ID:          "B2",
		Mode:        "Air",
		Direction:   "Export",
		Client:      "Beta",
		ArrivalDate: cal.in(30),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	t.Run("Missing fields are rejected", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, server.URL+"/operations", handler.RegisterShipmentRequest{
			ID:          "C3",
			ArrivalDate: cal.in(3),
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var errResp handler.ErrorResponse
		decode(t, resp, &errResp)
		assert.Equal(t, http.StatusBadRequest, errResp.Status)
		assert.Contains(t, errResp.Description, "client")
		assert.NotEmpty(t, errResp.RequestID)

		resp = doJSON(t, http.MethodGet, server.URL+"/operations/C3", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Malformed body", func(t *testing.T) {
		resp, err := http.Post(server.URL+"/operations", "application/json", bytes.NewBufferString("{"))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Board carries computed fields", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, server.URL+"/operations", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var rows []handler.BoardRowResponse
		decode(t, resp, &rows)
		require.Len(t, rows, 2)
		assert.Equal(t, "A1", rows[0].ID)
		assert.Equal(t, cal.in(0), rows[0].CertificationDue)
		assert.Equal(t, cal.in(5), rows[0].ReleaseDue)
		assert.Equal(t, 7, rows[0].DaysToArrival)
		assert.True(t, rows[0].HasTRMData)
		assert.Equal(t, cal.in(7), rows[0].BestInvoiceDate)
		assert.Equal(t, 3950.25, rows[0].BestTRM)

		// nothing published around B2's arrival: every slot falls back to the same
		// last known value and the tie keeps the day before
		assert.True(t, rows[1].HasTRMData)
		assert.Equal(t, cal.in(29), rows[1].BestInvoiceDate)
	})

	t.Run("Get one", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, server.URL+"/operations/A1", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var got handler.ShipmentResponse
		decode(t, resp, &got)
		assert.Equal(t, "Acme", got.Client)
	})

	t.Run("Alerts for today", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, server.URL+"/alerts", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var alerts []handler.AlertResponse
		decode(t, resp, &alerts)
		require.Len(t, alerts, 1)
		assert.Equal(t, "CertificationDue", alerts[0].Kind)
		assert.Equal(t, "A1", alerts[0].ShipmentID)

		resp = doJSON(t, http.MethodGet, server.URL+"/alerts?window=week", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		decode(t, resp, &alerts)
		// certification today, release in five days
		assert.Len(t, alerts, 2)

		resp = doJSON(t, http.MethodGet, server.URL+"/alerts?window=decade", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Alert history", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, server.URL+"/alerts/history", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var records []handler.AlertRecordResponse
		decode(t, resp, &records)
		// four events per shipment: certification, release, arrival, invoice
		require.Len(t, records, 8)
		assert.Equal(t, 0, records[0].Position)
		assert.Equal(t, "CertificationDue", records[0].Kind)
		assert.False(t, records[0].Resolved)

		resp = doJSON(t, http.MethodPost, server.URL+"/alerts/history/0/resolve", nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = doJSON(t, http.MethodGet, server.URL+"/alerts/history", nil)
		decode(t, resp, &records)
		assert.True(t, records[0].Resolved)

		resp = doJSON(t, http.MethodPost, server.URL+"/alerts/history/99/resolve", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp = doJSON(t, http.MethodPost, server.URL+"/alerts/history/first/resolve", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Alert report", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, server.URL+"/alerts/report.pdf?window=month", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	})

	t.Run("Delete", func(t *testing.T) {
		resp := doJSON(t, http.MethodDelete, server.URL+"/operations", handler.DeleteShipmentsRequest{IDs: []string{"B2", "nope"}})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var deleted handler.DeleteShipmentsResponse
		decode(t, resp, &deleted)
		assert.Equal(t, 1, deleted.Removed)

		resp = doJSON(t, http.MethodDelete, server.URL+"/operations/A1", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		decode(t, resp, &deleted)
		assert.Equal(t, 1, deleted.Removed)

		resp = doJSON(t, http.MethodGet, server.URL+"/operations", nil)
		var rows []handler.BoardRowResponse
		decode(t, resp, &rows)
		assert.Empty(t, rows)

		resp = doJSON(t, http.MethodDelete, server.URL+"/operations", handler.DeleteShipmentsRequest{})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestTRMEndpoints(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cal := newCalendar()
	server := setupTestServer(t, mocks.StaticRateSource{
		cal.in(0): 4000.50,
		cal.in(1): 4010.00,
	})

	t.Run("Fetched rate", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, server.URL+"/trm?date="+cal.in(0), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var rate handler.RateResponse
		decode(t, resp, &rate)
		assert.Equal(t, 4000.50, rate.Value)
		assert.Equal(t, "source", rate.Source)
	})

	t.Run("Unpublished date falls back to the last known value", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, server.URL+"/trm?date="+cal.in(-30), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var rate handler.RateResponse
		decode(t, resp, &rate)
		assert.Equal(t, 4000.50, rate.Value)
		assert.Equal(t, "history", rate.Source)
		assert.Equal(t, cal.in(-30), rate.Date)
	})

	t.Run("Bad date", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, server.URL+"/trm?date=10/03/2024", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Summary", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, server.URL+"/trm/summary", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var summary handler.TRMSummaryResponse
		decode(t, resp, &summary)
		assert.Equal(t, 4000.50, summary.Today.Value)
		assert.Equal(t, 4010.00, summary.Tomorrow.Value)
		assert.Equal(t, "up", summary.Trend)

		resp = doJSON(t, http.MethodGet, server.URL+"/trm/summary?trm_tomorrow=3999", nil)
		decode(t, resp, &summary)
		assert.Equal(t, "down", summary.Trend)
		assert.Equal(t, "manual", summary.Tomorrow.Source)

		resp = doJSON(t, http.MethodGet, server.URL+"/trm/summary?trm_today=abc", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Advice", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, server.URL+"/advice?arrival="+cal.in(0), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var advice handler.AdviceResponse
		decode(t, resp, &advice)
		assert.True(t, advice.HasData)
		assert.Equal(t, cal.in(0), advice.ArrivalDate)
		require.Len(t, advice.Candidates, 3)
		assert.Equal(t, 4000.50, advice.Candidates[1].Value)

		resp = doJSON(t, http.MethodGet, server.URL+"/advice?arrival="+cal.in(0)+"&trm_tomorrow=5000", nil)
		decode(t, resp, &advice)
		assert.Equal(t, cal.in(1), advice.BestDate)
		assert.Equal(t, 5000.0, advice.BestRate)

		resp = doJSON(t, http.MethodGet, server.URL+"/advice?arrival="+cal.in(0)+"&trm_today=6000&trm_tomorrow=5000", nil)
		decode(t, resp, &advice)
		assert.Equal(t, cal.in(0), advice.BestDate)
		assert.Equal(t, "manual", advice.Candidates[1].Source)

		resp = doJSON(t, http.MethodGet, server.URL+"/advice", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Metrics", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, server.URL+"/metrics", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(data), "freight_tracker_trm_resolutions_total")
		assert.Contains(t, string(data), "freight_tracker_http_requests_total")
	})
}

func TestRegisterSpreadsheet(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cal := newCalendar()
	server := setupTestServer(t, mocks.StaticRateSource{cal.in(10): 4100})

	resp := doJSON(t, http.MethodPost, server.URL+"/operations", handler.RegisterShipmentRequest{
		ID: "A1", Mode: "Land", Direction: "Import", Client: "Acme", ArrivalDate: cal.in(10),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, server.URL+"/operations/export.xlsx", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	workbook, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(workbook))
	require.NoError(t, err)
	id, err := f.GetCellValue("Operaciones", "A2")
	require.NoError(t, err)
	assert.Equal(t, "A1", id)

	// add a good row and a bad one, then upload
	require.NoError(t, f.SetSheetRow("Operaciones", "A3", &[]interface{}{"B2", "Rail", "Export", "Beta", cal.in(20)}))
	require.NoError(t, f.SetSheetRow("Operaciones", "A4", &[]interface{}{"C3", "Submarine", "Export", "Gamma", cal.in(20)}))
	var upload bytes.Buffer
	require.NoError(t, f.Write(&upload))
	f.Close()

	t.Run("Raw body", func(t *testing.T) {
		resp, err := http.Post(server.URL+"/operations/import", "application/octet-stream", bytes.NewReader(upload.Bytes()))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result handler.ImportResponse
		decode(t, resp, &result)
		assert.Equal(t, 2, result.Imported)
		require.Len(t, result.Rejected, 1)
		assert.Equal(t, 4, result.Rejected[0].Row)
		assert.Equal(t, "C3", result.Rejected[0].ID)
	})

	t.Run("Multipart upload", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("file", "operaciones.xlsx")
		require.NoError(t, err)
		_, err = part.Write(upload.Bytes())
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		resp, err := http.Post(server.URL+"/operations/import", mw.FormDataContentType(), &body)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result handler.ImportResponse
		decode(t, resp, &result)
		assert.Equal(t, 2, result.Imported)
	})

	t.Run("Not a workbook", func(t *testing.T) {
		resp, err := http.Post(server.URL+"/operations/import", "text/csv", bytes.NewBufferString("Consecutivo\nA1\n"))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	resp = doJSON(t, http.MethodGet, server.URL+"/operations", nil)
	var rows []handler.BoardRowResponse
	decode(t, resp, &rows)
	assert.Len(t, rows, 2)
}
