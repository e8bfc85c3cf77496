package server

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/lifeplan/lifeplan/internal/calculation"
	"github.com/lifeplan/lifeplan/internal/domain"
	"github.com/lifeplan/lifeplan/internal/store"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testServer(t *testing.T) *Server {
	t.Helper()
	plan := &domain.Plan{
		BasicInfo: domain.BasicInfo{
			CurrentAge:           40,
			DeathAge:             44,
			StartYear:            2025,
			Occupation:           domain.OccupationCompanyEmployee,
			MonthlyLivingExpense: d("20"),
			WorkStartAge:         22,
			RetirementAge:        65,
			PensionClaimAge:      65,
		},
		Income: []domain.LineItem{
			{
				ID:        "salary",
				Scope:     domain.ScopePersonal,
				Kind:      domain.KindIncome,
				BasicType: domain.BasicIncomeSalary,
				Amounts:   map[int]decimal.Decimal{2025: d("500")},
			},
		},
	}
	st := store.NewPlanStore(plan, calculation.NewEngine(), nil)
	return New(st, nil, "test")
}

func serve(t *testing.T, s *Server, method, uri string, body []byte) *fasthttp.RequestCtx {
	t.Helper()
	var req fasthttp.Request
	req.SetRequestURI(uri)
	req.Header.SetMethod(method)
	if body != nil {
		req.SetBody(body)
		req.Header.SetContentType("application/json")
	}

	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	s.Handler()(ctx)
	return ctx
}

func TestHealthz(t *testing.T) {
	ctx := serve(t, testServer(t), fasthttp.MethodGet, "/healthz", nil)
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.JSONEq(t, `{"status":"ok"}`, string(ctx.Response.Body()))
}

func TestVersion(t *testing.T) {
	ctx := serve(t, testServer(t), fasthttp.MethodGet, "/api/version", nil)
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.JSONEq(t, `{"version":"test"}`, string(ctx.Response.Body()))
}

func TestUnknownRoute(t *testing.T) {
	ctx := serve(t, testServer(t), fasthttp.MethodGet, "/nope", nil)
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), "no route")
}

func TestGetLedger(t *testing.T) {
	ctx := serve(t, testServer(t), fasthttp.MethodGet, "/api/ledger", nil)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var resp struct {
		StartYear int                 `json:"startYear"`
		EndYear   int                 `json:"endYear"`
		Rows      []domain.YearLedger `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Equal(t, 2025, resp.StartYear)
	assert.Equal(t, 2029, resp.EndYear)
	require.Len(t, resp.Rows, 5)
	assert.True(t, resp.Rows[0].MainIncome.Equal(d("383")), "main income: %s", resp.Rows[0].MainIncome)
}

func TestPostLedgerStateless(t *testing.T) {
	s := testServer(t)

	posted := &domain.Plan{
		BasicInfo: domain.BasicInfo{
			CurrentAge:           50,
			DeathAge:             52,
			StartYear:            2030,
			Occupation:           domain.OccupationSelfEmployed,
			MonthlyLivingExpense: d("15"),
			WorkStartAge:         22,
			RetirementAge:        65,
			PensionClaimAge:      65,
		},
		Income: []domain.LineItem{
			{
				Scope:   domain.ScopePersonal,
				Kind:    domain.KindIncome,
				Amounts: map[int]decimal.Decimal{2030: d("400")},
			},
		},
	}
	body, err := json.Marshal(posted)
	require.NoError(t, err)

	ctx := serve(t, s, fasthttp.MethodPost, "/api/ledger", body)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode(), "body: %s", ctx.Response.Body())

	var resp struct {
		StartYear int                 `json:"startYear"`
		Rows      []domain.YearLedger `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Equal(t, 2030, resp.StartYear)
	require.Len(t, resp.Rows, 3)
	assert.True(t, resp.Rows[0].OtherIncome.Equal(d("400")))

	// The stored plan is untouched.
	stored := serve(t, s, fasthttp.MethodGet, "/api/ledger", nil)
	var storedResp struct {
		StartYear int `json:"startYear"`
	}
	require.NoError(t, json.Unmarshal(stored.Response.Body(), &storedResp))
	assert.Equal(t, 2025, storedResp.StartYear)
}

func TestPostLedgerRejectsBadPayloads(t *testing.T) {
	s := testServer(t)

	t.Run("empty body", func(t *testing.T) {
		ctx := serve(t, s, fasthttp.MethodPost, "/api/ledger", []byte{})
		assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
	})

	t.Run("malformed json", func(t *testing.T) {
		ctx := serve(t, s, fasthttp.MethodPost, "/api/ledger", []byte("{nope"))
		assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
		assert.Contains(t, string(ctx.Response.Body()), "invalid plan document")
	})

	t.Run("structurally invalid plan", func(t *testing.T) {
		ctx := serve(t, s, fasthttp.MethodPost, "/api/ledger",
			[]byte(`{"basicInfo":{"currentAge":50,"deathAge":30,"startYear":2025,"occupation":"self_employed"}}`))
		assert.Equal(t, fasthttp.StatusUnprocessableEntity, ctx.Response.StatusCode())
	})

	t.Run("wrong method", func(t *testing.T) {
		ctx := serve(t, s, fasthttp.MethodDelete, "/api/ledger", nil)
		assert.Equal(t, fasthttp.StatusMethodNotAllowed, ctx.Response.StatusCode())
	})
}

func TestReportFormats(t *testing.T) {
	s := testServer(t)

	html := serve(t, s, fasthttp.MethodGet, "/report", nil)
	require.Equal(t, fasthttp.StatusOK, html.Response.StatusCode())
	assert.Contains(t, string(html.Response.Header.ContentType()), "text/html")
	assert.Contains(t, string(html.Response.Body()), "Lifetime Cash Flow Projection")

	csv := serve(t, s, fasthttp.MethodGet, "/report?format=csv", nil)
	require.Equal(t, fasthttp.StatusOK, csv.Response.StatusCode())
	assert.Contains(t, string(csv.Response.Header.ContentType()), "text/csv")

	bad := serve(t, s, fasthttp.MethodGet, "/report?format=pdf", nil)
	assert.Equal(t, fasthttp.StatusBadRequest, bad.Response.StatusCode())
}
