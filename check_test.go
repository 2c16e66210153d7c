package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/helpcomp/morning-bill-checker/period"
	"github.com/helpcomp/morning-bill-checker/reconcile"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(y int, m time.Month, d int) func() time.Time {
	return func() time.Time { return time.Date(y, m, d, 9, 30, 0, 0, time.UTC) }
}

func testChecker(t *testing.T, fetched []reconcile.Bill, clock func() time.Time) (*Checker, *[]period.Period) {
	t.Helper()
	roster, err := reconcile.NewRoster(map[string]int{"Phone Ltd": 2, "Water Co": 1})
	require.NoError(t, err)

	var asked []period.Period
	f := reconcile.FetcherFunc(func(ctx context.Context, p period.Period) ([]reconcile.Bill, error) {
		asked = append(asked, p)
		return fetched, nil
	})
	return NewChecker(f, roster, clock), &asked
}

func TestCheckCmdResolve(t *testing.T) {
	r := period.Resolver{Clock: fixedClock(2024, 1, 5)}
	now := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		cmd      CheckCmd
		wantFrom string
		wantTo   string
		wantErr  bool
	}{
		{"current period wraps year", CheckCmd{}, "2023-11-01", "2023-12-31", false},
		{"explicit date", CheckCmd{Date: "2024-03-15"}, "2024-03-01", "2024-04-30", false},
		{"label in current year", CheckCmd{Period: "Jan-Feb"}, "2024-01-01", "2024-02-29", false},
		{"label with year", CheckCmd{Period: "Jan-Feb", Year: 2023}, "2023-01-01", "2023-02-28", false},
		{"bad date", CheckCmd{Date: "15-03-2024"}, "", "", true},
		{"bad label", CheckCmd{Period: "Feb-Mar"}, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.cmd.resolve(r, now)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFrom, p.FromDate())
			assert.Equal(t, tt.wantTo, p.ToDate())
		})
	}

	_, err := (&CheckCmd{Date: "nope"}).resolve(r, now)
	var perr *period.ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestCheckCmdValidate(t *testing.T) {
	assert.NoError(t, (&CheckCmd{}).Validate())
	assert.NoError(t, (&CheckCmd{Period: "Mar-Apr", Year: 2024}).Validate())
	assert.Error(t, (&CheckCmd{Date: "2024-03-15", Period: "Mar-Apr"}).Validate())
	assert.Error(t, (&CheckCmd{Year: 2024}).Validate())
}

func TestCheckerRunsCurrentPeriod(t *testing.T) {
	c, asked := testChecker(t, []reconcile.Bill{
		{Supplier: "Phone Ltd", Amount: decimal.NewFromInt(50)},
	}, fixedClock(2024, 3, 15))

	res, err := c.Run(context.Background(), c.Current())
	require.NoError(t, err)
	require.Len(t, *asked, 1)
	assert.Equal(t, "2024-03-01", (*asked)[0].FromDate())
	assert.Equal(t, []string{"Water Co"}, res.Lacking)
	assert.Equal(t, []string{"Phone Ltd"}, res.Short)
}

func TestCheckerRunError(t *testing.T) {
	roster, err := reconcile.NewRoster(map[string]int{"A": 1})
	require.NoError(t, err)
	f := reconcile.FetcherFunc(func(ctx context.Context, p period.Period) ([]reconcile.Bill, error) {
		return nil, errors.New("boom")
	})
	c := NewChecker(f, roster, fixedClock(2024, 3, 15))

	store := &reportStore{}
	refresh(context.Background(), c, store)
	_, _, ok := store.Latest()
	assert.False(t, ok)

	_, err = c.Run(context.Background(), c.Current())
	var ferr *reconcile.FetchError
	assert.ErrorAs(t, err, &ferr)
}

func TestWriteText(t *testing.T) {
	c, _ := testChecker(t, []reconcile.Bill{{Supplier: "Phone Ltd"}}, fixedClock(2024, 1, 5))
	res, err := c.Run(context.Background(), c.Current())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeText(&buf, res))
	assert.Equal(t, `Reporting Period: November-December, 2023

Companies lacking bills altogether:
  Water Co

Companies with less bills than expected:
  Phone Ltd (1 of 2)
`, buf.String())

	clean, _ := testChecker(t, []reconcile.Bill{{Supplier: "Phone Ltd"}, {Supplier: "Phone Ltd"}, {Supplier: "Water Co"}}, fixedClock(2024, 3, 15))
	res, err = clean.Run(context.Background(), clean.Current())
	require.NoError(t, err)

	buf.Reset()
	require.NoError(t, writeText(&buf, res))
	assert.Contains(t, buf.String(), "Companies lacking bills altogether:\n  No Companies\n")
	assert.Contains(t, buf.String(), "Companies with less bills than expected:\n  No Companies\n")
}

func TestCheckerNoResult(t *testing.T) {
	roster, err := reconcile.NewRoster(map[string]int{"Phone Ltd": 2, "Water Co": 1})
	require.NoError(t, err)
	f := reconcile.FetcherFunc(func(ctx context.Context, p period.Period) ([]reconcile.Bill, error) {
		return nil, reconcile.ErrNoResult
	})
	c := NewChecker(f, roster, fixedClock(2024, 3, 15))

	res, err := c.Run(context.Background(), c.Current())
	require.NoError(t, err)
	assert.True(t, res.NoResult)

	var buf bytes.Buffer
	require.NoError(t, writeText(&buf, res))
	assert.Equal(t, `Reporting Period: March-April, 2024

No expense data was returned for this period.

Companies lacking bills altogether:
  No Companies

Companies with less bills than expected:
  No Companies
`, buf.String())

	buf.Reset()
	require.NoError(t, writeJSON(&buf, res))
	assert.Contains(t, buf.String(), `"no_result": true`)
}

func TestWriteJSON(t *testing.T) {
	c, _ := testChecker(t, nil, fixedClock(2024, 3, 15))
	res, err := c.Run(context.Background(), c.Current())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, res))

	var got struct {
		Period  periodJSON `json:"period"`
		Lacking []string   `json:"lacking"`
		Short   []string   `json:"short"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, periodJSON{From: "2024-03-01", To: "2024-04-30", Label: "Mar-Apr", Description: "March-April, 2024"}, got.Period)
	assert.Equal(t, []string{"Phone Ltd", "Water Co"}, got.Lacking)
	assert.Equal(t, []string{}, got.Short)
}

func TestReportHandler(t *testing.T) {
	store := &reportStore{}

	rr := httptest.NewRecorder()
	store.reportHandler(rr, httptest.NewRequest(http.MethodGet, "/report", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	c, _ := testChecker(t, []reconcile.Bill{{Supplier: "Water Co"}}, fixedClock(2024, 3, 15))
	refresh(context.Background(), c, store)
	_, _, ok := store.Latest()
	require.True(t, ok)

	rr = httptest.NewRecorder()
	store.reportHandler(rr, httptest.NewRequest(http.MethodGet, "/report", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	var got reportJSON
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "Mar-Apr", got.Period.Label)
	assert.Equal(t, []string{"Phone Ltd"}, got.Lacking)
	assert.NotEmpty(t, got.GeneratedAt)

	rr = httptest.NewRecorder()
	store.reportHandler(rr, httptest.NewRequest(http.MethodPost, "/report", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
