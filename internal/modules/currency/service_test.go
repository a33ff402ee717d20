package currency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/compass/internal/domain"
)

type fakeFetcher struct {
	spot     float64
	spotErr  error
	daily    []RatePoint
	dailyErr error

	spotCalls  int
	dailyCalls int
	lastFrom   string
	lastTo     string
}

func (f *fakeFetcher) SpotRate(from, to domain.Currency) (float64, error) {
	f.spotCalls++
	if f.spotErr != nil {
		return 0, f.spotErr
	}
	return f.spot, nil
}

func (f *fakeFetcher) DailyRates(ctx context.Context, from, to domain.Currency, fromDate, toDate string) ([]RatePoint, error) {
	f.dailyCalls++
	f.lastFrom, f.lastTo = fromDate, toDate
	if f.dailyErr != nil {
		return nil, f.dailyErr
	}
	var out []RatePoint
	for _, point := range f.daily {
		if point.Date >= fromDate && point.Date <= toDate {
			out = append(out, point)
		}
	}
	return out, nil
}

func newTestService(t *testing.T, fetcher *fakeFetcher) (*Service, *RateRepository) {
	t.Helper()
	repo := NewRateRepository(setupTestDB(t), zerolog.Nop())
	return NewService(fetcher, repo, domain.CurrencyKRW, zerolog.Nop()), repo
}

func TestLatestHomeCurrencyIsUnit(t *testing.T) {
	fetcher := &fakeFetcher{}
	service, _ := newTestService(t, fetcher)

	latest, err := service.Latest(domain.CurrencyKRW)
	require.NoError(t, err)
	assert.Equal(t, 1.0, latest.Rate)
	assert.Equal(t, "KRW/KRW", latest.Pair)
	assert.Zero(t, fetcher.spotCalls)
}

func TestLatestFetchesAndStoresSpot(t *testing.T) {
	fetcher := &fakeFetcher{spot: 1342.7}
	service, repo := newTestService(t, fetcher)

	latest, err := service.Latest(domain.CurrencyUSD)
	require.NoError(t, err)
	assert.Equal(t, 1342.7, latest.Rate)
	assert.Equal(t, "USD/KRW", latest.Pair)
	assert.Equal(t, domain.CurrencyUSD, latest.From)
	assert.Equal(t, domain.CurrencyKRW, latest.To)

	stored, err := repo.LatestStoredRate(domain.CurrencyUSD, domain.CurrencyKRW)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), stored.Date)
	assert.Equal(t, 1342.7, stored.Rate)
}

func TestLatestSurfacesProviderError(t *testing.T) {
	fetcher := &fakeFetcher{spotErr: errors.New("provider down")}
	service, _ := newTestService(t, fetcher)

	_, err := service.Latest(domain.CurrencyUSD)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "USD/KRW")
}

func TestSeriesFetchesFullWindowWhenStoreIsEmpty(t *testing.T) {
	fetcher := &fakeFetcher{daily: []RatePoint{
		{Date: "2024-01-02", Rate: 1300},
		{Date: "2024-01-03", Rate: 1310},
	}}
	service, _ := newTestService(t, fetcher)

	points, err := service.Series(context.Background(), domain.CurrencyUSD, domain.CurrencyKRW, "2024-01-01", "2024-01-05")
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.dailyCalls)
	assert.Equal(t, "2024-01-01", fetcher.lastFrom)
	assert.Equal(t, "2024-01-05", fetcher.lastTo)
	require.Len(t, points, 2)
	assert.Equal(t, "2024-01-02", points[0].Date)
	assert.Equal(t, "2024-01-03", points[1].Date)
}

func TestSeriesServedFromStoreWithoutFetching(t *testing.T) {
	fetcher := &fakeFetcher{}
	service, repo := newTestService(t, fetcher)
	usdkrw(t, repo,
		RatePoint{Date: "2024-01-02", Rate: 1300},
		RatePoint{Date: "2024-01-03", Rate: 1310},
	)

	points, err := service.Series(context.Background(), domain.CurrencyUSD, domain.CurrencyKRW, "2024-01-01", "2024-01-03")
	require.NoError(t, err)
	assert.Zero(t, fetcher.dailyCalls)
	require.Len(t, points, 2)
}

func TestSeriesFetchesOnlyTheTailGap(t *testing.T) {
	fetcher := &fakeFetcher{daily: []RatePoint{
		{Date: "2024-01-04", Rate: 1320},
		{Date: "2024-01-05", Rate: 1330},
	}}
	service, repo := newTestService(t, fetcher)
	usdkrw(t, repo,
		RatePoint{Date: "2024-01-02", Rate: 1300},
		RatePoint{Date: "2024-01-03", Rate: 1310},
	)

	points, err := service.Series(context.Background(), domain.CurrencyUSD, domain.CurrencyKRW, "2024-01-02", "2024-01-05")
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.dailyCalls)
	assert.Equal(t, "2024-01-04", fetcher.lastFrom, "fetch starts after the last stored observation")
	assert.Equal(t, "2024-01-05", fetcher.lastTo)
	require.Len(t, points, 4)
	assert.Equal(t, "2024-01-02", points[0].Date)
	assert.Equal(t, "2024-01-05", points[3].Date)
}

func TestSeriesToleratesWeekendHeadGap(t *testing.T) {
	fetcher := &fakeFetcher{}
	service, repo := newTestService(t, fetcher)
	// Friday the 5th requested, first observation Monday the 8th.
	usdkrw(t, repo,
		RatePoint{Date: "2024-01-08", Rate: 1300},
		RatePoint{Date: "2024-01-09", Rate: 1310},
		RatePoint{Date: "2024-01-10", Rate: 1320},
	)

	points, err := service.Series(context.Background(), domain.CurrencyUSD, domain.CurrencyKRW, "2024-01-05", "2024-01-10")
	require.NoError(t, err)
	assert.Zero(t, fetcher.dailyCalls, "a short head gap is weekend shaped, not missing data")
	require.Len(t, points, 3)
}

func TestSeriesRefetchesWindowOnDeepHeadGap(t *testing.T) {
	fetcher := &fakeFetcher{daily: []RatePoint{
		{Date: "2024-01-02", Rate: 1280},
		{Date: "2024-06-03", Rate: 1300},
		{Date: "2024-06-04", Rate: 1310},
	}}
	service, repo := newTestService(t, fetcher)
	usdkrw(t, repo,
		RatePoint{Date: "2024-06-03", Rate: 1300},
		RatePoint{Date: "2024-06-04", Rate: 1310},
	)

	points, err := service.Series(context.Background(), domain.CurrencyUSD, domain.CurrencyKRW, "2024-01-01", "2024-06-04")
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.dailyCalls)
	assert.Equal(t, "2024-01-01", fetcher.lastFrom, "a deep head gap refetches the whole window")
	require.Len(t, points, 3)
	assert.Equal(t, "2024-01-02", points[0].Date)
}

func TestSeriesServesStoredWhenProviderIsDown(t *testing.T) {
	fetcher := &fakeFetcher{dailyErr: errors.New("provider down")}
	service, repo := newTestService(t, fetcher)
	usdkrw(t, repo, RatePoint{Date: "2024-01-02", Rate: 1300})

	points, err := service.Series(context.Background(), domain.CurrencyUSD, domain.CurrencyKRW, "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 1300.0, points[0].Rate)
}

func TestSeriesErrorsWhenProviderDownAndNothingStored(t *testing.T) {
	fetcher := &fakeFetcher{dailyErr: errors.New("provider down")}
	service, _ := newTestService(t, fetcher)

	_, err := service.Series(context.Background(), domain.CurrencyUSD, domain.CurrencyKRW, "2024-01-01", "2024-01-31")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "USD/KRW")
}

func TestSeriesRejectsIdenticalCurrencies(t *testing.T) {
	service, _ := newTestService(t, &fakeFetcher{})

	_, err := service.Series(context.Background(), domain.CurrencyKRW, domain.CurrencyKRW, "2024-01-01", "2024-01-31")
	require.Error(t, err)
}

func TestSeriesRejectsInvertedWindow(t *testing.T) {
	service, _ := newTestService(t, &fakeFetcher{})

	_, err := service.Series(context.Background(), domain.CurrencyUSD, domain.CurrencyKRW, "2024-02-01", "2024-01-01")
	require.Error(t, err)
}

func TestRefreshFetchesUnconditionally(t *testing.T) {
	fetcher := &fakeFetcher{daily: []RatePoint{
		{Date: "2024-01-02", Rate: 1301},
	}}
	service, repo := newTestService(t, fetcher)
	usdkrw(t, repo, RatePoint{Date: "2024-01-02", Rate: 1300})

	stored, err := service.Refresh(context.Background(), domain.CurrencyUSD, domain.CurrencyKRW, "2024-01-01", "2024-01-05")
	require.NoError(t, err)
	assert.Equal(t, 1, stored)
	assert.Equal(t, 1, fetcher.dailyCalls)

	points, err := repo.RateSeries(domain.CurrencyUSD, domain.CurrencyKRW, "2024-01-02", "2024-01-02")
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 1301.0, points[0].Rate, "refresh overwrites the stored observation")
}
