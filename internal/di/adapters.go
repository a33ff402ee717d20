// Package di provides adapters between module interfaces and their
// concrete implementations. Modules declare the narrow interfaces they
// consume; the adapters here bind those interfaces to repositories and
// API clients without the modules importing each other.
package di

import (
	"context"

	"github.com/aristath/compass/internal/clients/eodhd"
	"github.com/aristath/compass/internal/clients/exchangerate"
	"github.com/aristath/compass/internal/domain"
	"github.com/aristath/compass/internal/modules/currency"
	"github.com/aristath/compass/internal/modules/simulation"
	"github.com/aristath/compass/internal/modules/universe"
)

// marketDataAdapter exposes the instrument catalog and stored price history
// as the market data source the simulation engine consumes.
type marketDataAdapter struct {
	instruments *universe.InstrumentRepository
	prices      *universe.PriceRepository
}

func (a *marketDataAdapter) InstrumentCurrency(symbol string) (domain.Currency, bool, error) {
	inst, err := a.instruments.Get(symbol)
	if err != nil {
		return "", false, err
	}
	if inst == nil {
		return "", false, nil
	}
	return inst.Currency, true, nil
}

func (a *marketDataAdapter) PriceSeries(symbol, from, to string) (simulation.TimeSeries, error) {
	prices, err := a.prices.PriceSeries(symbol, from, to)
	if err != nil {
		return simulation.TimeSeries{}, err
	}
	dates := make([]string, len(prices))
	closes := make([]float64, len(prices))
	for i, p := range prices {
		dates[i] = p.Date
		closes[i] = p.Close
	}
	return simulation.NewTimeSeries(dates, closes)
}

// rateSourceAdapter exposes the currency service's read-through rate store
// as the exchange rate source the simulation engine consumes.
type rateSourceAdapter struct {
	currency *currency.Service
}

func (a *rateSourceAdapter) RateSeries(ctx context.Context, from, to domain.Currency, fromDate, toDate string) (simulation.TimeSeries, error) {
	points, err := a.currency.Series(ctx, from, to, fromDate, toDate)
	if err != nil {
		return simulation.TimeSeries{}, err
	}
	dates := make([]string, len(points))
	rates := make([]float64, len(points))
	for i, p := range points {
		dates[i] = p.Date
		rates[i] = p.Rate
	}
	return simulation.NewTimeSeries(dates, rates)
}

// priceFetcherAdapter maps vendor bars onto the sync service's price rows.
type priceFetcherAdapter struct {
	client *eodhd.Client
}

func (a *priceFetcherAdapter) FetchDailyPrices(ctx context.Context, symbol, from, to string) ([]universe.DailyPrice, error) {
	bars, err := a.client.FetchDailyBars(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}
	prices := make([]universe.DailyPrice, len(bars))
	for i, bar := range bars {
		vol := bar.Volume
		prices[i] = universe.DailyPrice{
			Date:          bar.Date,
			Open:          bar.Open,
			High:          bar.High,
			Low:           bar.Low,
			Close:         bar.Close,
			AdjustedClose: bar.AdjustedClose,
			Volume:        &vol,
		}
	}
	return prices, nil
}

// rateFetcherAdapter binds the FX provider client to the currency service.
type rateFetcherAdapter struct {
	client *exchangerate.Client
}

func (a *rateFetcherAdapter) SpotRate(from, to domain.Currency) (float64, error) {
	return a.client.GetRate(from, to)
}

func (a *rateFetcherAdapter) DailyRates(ctx context.Context, from, to domain.Currency, fromDate, toDate string) ([]currency.RatePoint, error) {
	points, err := a.client.FetchRateSeries(ctx, from, to, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	out := make([]currency.RatePoint, len(points))
	for i, p := range points {
		out[i] = currency.RatePoint{Date: p.Date, Rate: p.Rate}
	}
	return out, nil
}

// barSourceAdapter feeds stored price history to the scoring service as
// parallel date/close/volume slices, oldest first.
type barSourceAdapter struct {
	prices *universe.PriceRepository
}

func (a *barSourceAdapter) RecentBars(symbol string, limit int) ([]string, []float64, []float64, error) {
	bars, err := a.prices.RecentPrices(symbol, limit)
	if err != nil {
		return nil, nil, nil, err
	}
	dates := make([]string, len(bars))
	closes := make([]float64, len(bars))
	volumes := make([]float64, len(bars))
	for i, bar := range bars {
		dates[i] = bar.Date
		closes[i] = bar.Close
		if bar.Volume != nil {
			volumes[i] = float64(*bar.Volume)
		}
	}
	return dates, closes, volumes, nil
}
