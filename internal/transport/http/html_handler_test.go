package http

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"contractreport/internal/config"
	"contractreport/internal/services"
	"contractreport/internal/shared/testutil"
	"contractreport/pkg/contracts/domain"
)

func dashboardForm(t *testing.T, filename string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func newDashboard(t *testing.T, service ReportServiceInterface) *DashboardHandler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h, err := NewDashboardHandler(service, config.DefaultMaxUploadBytes, logger)
	require.NoError(t, err)
	return h
}

func TestDashboardHandler_Index(t *testing.T) {
	h := newDashboard(t, new(MockReportService))

	rec := httptest.NewRecorder()
	h.Index(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, `<form method="post" action="/dashboard" enctype="multipart/form-data">`)
	assert.Contains(t, body, `value="10"`)
	assert.Contains(t, body, "Upload hasil Survey")
	assert.NotContains(t, body, "Data loaded")
}

func TestDashboardHandler_Dashboard(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := services.NewReportService(config.Default().Report, nil, nil, logger)
	h := newDashboard(t, service)
	upload := testutil.ContractCSV(t, testutil.SampleRows())

	tests := []struct {
		name           string
		filename       string
		fields         map[string]string
		expectedStatus int
		contains       []string
		notContains    []string
	}{
		{
			name:           "full report",
			filename:       "contracts.csv",
			expectedStatus: http.StatusOK,
			contains: []string{
				"Data loaded: 7 rows, 6 columns from contracts.csv",
				"Total: 2 contracts",
				"Pivot 1: latest record by date created",
				"Pivot 2: latest status, date ignored",
				"no data for menu: Upload hasil Survey",
				"data:text/csv;base64,",
				`download="pivot1_by_latest_date.csv"`,
				`download="contract_report.xlsx"`,
			},
		},
		{
			name:           "menu override",
			filename:       "contracts.csv",
			fields:         map[string]string{"top": "1", "menus": "Approval RM\n\n"},
			expectedStatus: http.StatusOK,
			contains:       []string{"<h3>Approval RM</h3>"},
			notContains:    []string{"<h3>Approval DD</h3>"},
		},
		{
			name:           "unsupported extension",
			filename:       "contracts.txt",
			expectedStatus: http.StatusBadRequest,
			contains:       []string{"Only .csv and .xlsx files are supported"},
			notContains:    []string{"Data loaded"},
		},
		{
			name:           "missing file",
			expectedStatus: http.StatusBadRequest,
			contains:       []string{"A file must be uploaded"},
		},
		{
			name:           "bad top",
			filename:       "contracts.csv",
			fields:         map[string]string{"top": "zero"},
			expectedStatus: http.StatusBadRequest,
			contains:       []string{"top must be a positive integer"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := dashboardForm(t, tt.filename, upload, tt.fields)
			req := httptest.NewRequest(http.MethodPost, "/dashboard", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			h.Dashboard(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			for _, want := range tt.contains {
				assert.Contains(t, rec.Body.String(), want)
			}
			for _, unwanted := range tt.notContains {
				assert.NotContains(t, rec.Body.String(), unwanted)
			}
		})
	}
}

func TestDashboardHandler_UnreadableUpload(t *testing.T) {
	mockService := new(MockReportService)
	mockService.On("Analyze", mock.Anything, "contracts.csv", mock.Anything, services.AnalyzeOptions{}).
		Return(nil, services.ErrEmptyUpload)
	h := newDashboard(t, mockService)

	body, contentType := dashboardForm(t, "contracts.csv", nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/dashboard", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Dashboard(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "The uploaded file could not be read: upload is empty")
	mockService.AssertExpectations(t)
}

func TestRankingViews(t *testing.T) {
	views := rankingViews([]domain.BranchRanking{
		{Menu: "Approval DD", Branches: []domain.BranchCount{
			{Branch: "Jakarta", Contracts: 4},
			{Branch: "Bandung", Contracts: 1},
		}},
		{Menu: "Upload hasil Survey", NoData: true},
	})

	require.Len(t, views, 2)
	assert.Equal(t, []barRow{
		{Rank: 1, Branch: "Jakarta", Contracts: 4, Percent: 100},
		{Rank: 2, Branch: "Bandung", Contracts: 1, Percent: 25},
	}, views[0].Rows)
	assert.True(t, views[1].NoData)
	assert.Empty(t, views[1].Rows)
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"Approval DD", "Approval RM"}, splitLines(" Approval DD\r\n\nApproval RM \n"))
	assert.Nil(t, splitLines("  \n"))
}
