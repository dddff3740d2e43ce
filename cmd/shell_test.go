package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/etnz/assets"
	"github.com/etnz/assets/exchangerate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawMarkdown(md string) string { return md }

func newSession(t *testing.T, rates assets.RateProvider) (*session, *bytes.Buffer) {
	t.Helper()
	table, err := assets.RatesFromFloats(map[string]float64{"EUR": 0.5, "CHF": 0.8})
	require.NoError(t, err)
	c, err := assets.Open(context.Background(), assets.NewMemoryStore(), assets.WithRates(table))
	require.NoError(t, err)
	var out bytes.Buffer
	return &session{coll: c, rates: rates, out: &out, render: rawMarkdown}, &out
}

func names(c *assets.Collection) []string {
	var list []string
	for _, a := range c.Assets() {
		list = append(list, a.Name)
	}
	return list
}

func TestSession_Run(t *testing.T) {
	s, out := newSession(t, nil)
	input := strings.Join([]string{
		`add name=Laptop type=digital value=1200 currency=usd location=Home`,
		`add name="Gold coins" type=Metal value=100 currency=EUR`,
		`add name=Cash type=Cash value=50 currency=CHF`,
		`sort value`,
		`up 3`,
		`edit 1 notes="in the safe"`,
		`currency eur`,
		`quit`,
		`add name=ignored type=Cash value=1 currency=USD`,
	}, "\n")

	require.NoError(t, s.run(context.Background(), strings.NewReader(input)))

	// values in USD: Laptop 1200, Gold coins 200, Cash 62.5
	assert.Equal(t, []string{"Cash", "Laptop", "Gold coins"}, names(s.coll))
	assert.Equal(t, assets.ManuallyAdjusted, s.coll.SortState().Order)
	assert.Equal(t, "EUR", s.coll.DisplayCurrency())

	first, err := s.coll.Get(s.coll.Assets()[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "in the safe", first.Notes)
	assert.Equal(t, assets.Digital, s.coll.Assets()[1].Type)

	got := out.String()
	assert.Contains(t, got, prompt)
	assert.Contains(t, got, "# Assets in EUR")
	assert.Contains(t, got, "**Total: ")
	assert.Contains(t, got, "€")
	assert.NotContains(t, got, "error:")
	assert.NotContains(t, got, "warning:")
}

func TestSession_Errors(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{`add name=Laptop`, "error: "},
		{`add name=Laptop type=Cash value=-1 currency=USD`, "error: "},
		{`add name=Laptop type=Cash value=1 currency=XXX`, "error: "},
		{`add colour=red`, "error: "},
		{`rm 9`, "warning: "},
		{`up 1`, "warning: "},
		{`down 1`, "warning: "},
		{`sort size`, "error: "},
		{`currency JPY`, "error: "},
		{`refresh`, "warning: offline"},
		{`frobnicate`, "error: unknown command"},
		{`edit`, "error: usage"},
		{`add name="unterminated`, "error: "},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			s, out := newSession(t, nil)
			_, err := s.exec(context.Background(), "add name=Only type=Cash value=1 currency=USD")
			require.NoError(t, err)
			out.Reset()

			require.NoError(t, s.run(context.Background(), strings.NewReader(tt.line)))
			assert.Contains(t, out.String(), tt.want)
			assert.Equal(t, []string{"Only"}, names(s.coll), "state is unchanged")
		})
	}
}

func TestSession_Refresh(t *testing.T) {
	failing := assets.RateProviderFunc(func(ctx context.Context) (assets.RateTable, error) {
		return assets.RateTable{}, assets.ErrRateFetchFailed
	})
	s, out := newSession(t, failing)
	require.NoError(t, s.run(context.Background(), strings.NewReader("refresh\nrates\n")))

	assert.True(t, s.coll.Rates().IsFallback())
	got := out.String()
	assert.Contains(t, got, "warning: ")
	assert.Contains(t, got, "# Exchange Rates")
	assert.Contains(t, got, "| EUR | 0.85 |")
}

func TestSession_RefreshSkipsDailyCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"rates":{"USD":1,"EUR":0.9}}`))
	}))
	t.Cleanup(srv.Close)
	provider := exchangerate.New(exchangerate.WithURL(srv.URL), exchangerate.WithHTTPClient(exchangerate.Daily(t.TempDir(), nil)))

	s, _ := newSession(t, provider)
	require.NoError(t, s.coll.RefreshRates(context.Background(), provider))
	require.NoError(t, s.coll.RefreshRates(context.Background(), provider))
	assert.Equal(t, int32(1), hits.Load())

	require.NoError(t, s.run(context.Background(), strings.NewReader("refresh\n")))
	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, assets.SourceRemote, s.coll.Rates().Source())
}

func TestSession_UnknownCurrencyWarning(t *testing.T) {
	table, err := assets.RatesFromFloats(map[string]float64{"EUR": 0.5})
	require.NoError(t, err)
	store := assets.NewMemoryStore(assets.Asset{Name: "Yen", Type: assets.Cash, Currency: "JPY"})
	c, err := assets.Open(context.Background(), store, assets.WithRates(table))
	require.NoError(t, err)

	var out bytes.Buffer
	s := &session{coll: c, out: &out, render: rawMarkdown}
	require.NoError(t, s.run(context.Background(), strings.NewReader("list\n")))
	assert.Contains(t, out.String(), "> **Warnings**")
	assert.Contains(t, out.String(), "Yen: ")
}
