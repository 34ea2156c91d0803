// app.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Config contains configuration for the application.
type Config struct {
	EDSHost       string
	AddressHost   string
	CacheTTL      time.Duration
	ReferenceFile string
	SpotDays      int
}

// App manages application dependencies and logic.
type App struct {
	Config    *Config
	Reference *Reference
	Cache     *MemoCache
	Spot      SpotPriceSource
	Emissions EmissionSource
	Tariffs   TariffSource
	Addresses AddressLookup
}

// ElPris is the composed price series for one request, with the grid
// company it was priced for when the GLN is known.
type ElPris struct {
	Date           time.Time
	PriceArea      string
	GLNNumber      string
	ChargeTypeCode string
	GridCompany    *GridCompany
	Records        []ComposedPriceRow
}

func NewApp(config *Config, rt http.RoundTripper) (*App, error) {
	if rt == nil {
		rt = http.DefaultTransport
	}

	ref, err := LoadReference(config.ReferenceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference data: %w", err)
	}

	eds := NewEnergiDataService(rt, config.EDSHost)
	if config.SpotDays > 0 {
		eds.Days = config.SpotDays
	}
	addresses := NewSupplierLookupService(rt, config.AddressHost)

	registerMetrics()

	app := &App{
		Config:    config,
		Reference: ref,
		Spot:      eds,
		Emissions: eds,
		Tariffs:   eds,
		Addresses: addresses,
	}

	if config.CacheTTL > 0 {
		c := NewMemoCache(config.CacheTTL)
		app.Cache = c
		app.Spot = c.WithSpotPrices(app.Spot)
		app.Emissions = c.WithEmissions(app.Emissions)
		app.Tariffs = c.WithTariffs(app.Tariffs)
		app.Addresses = c.WithAddressLookup(app.Addresses)
		log.Info().Dur("ttl", config.CacheTTL).Msg("memo cache enabled")
	} else {
		log.Info().Msg("memo cache disabled")
	}

	return app, nil
}

// ComputeElPris prices every spot interval published for date and the
// following day. Empty priceArea and chargeTypeCode are taken from the grid
// company registered for glnNumber.
func (app *App) ComputeElPris(ctx context.Context, date time.Time, priceArea, glnNumber, chargeTypeCode string) (*ElPris, error) {
	date = truncateToMidnight(date.In(Copenhagen))

	result := &ElPris{Date: date, GLNNumber: glnNumber}
	company, err := app.Reference.Directory.FindByGLN(glnNumber)
	switch {
	case err == nil:
		result.GridCompany = &company
		if priceArea == "" {
			priceArea = company.PriceArea
		}
		if chargeTypeCode == "" {
			chargeTypeCode = company.ChargeTypeCode
		}
	case errors.Is(err, ErrNotFound):
		if chargeTypeCode == "" {
			return nil, fmt.Errorf("%w: GLN %s is not in the directory and no charge type code was given", ErrUnknownGridCompany, glnNumber)
		}
	default:
		return nil, err
	}
	result.PriceArea = normalizePriceArea(priceArea)
	result.ChargeTypeCode = chargeTypeCode

	// Fail before fetching when no taxes cover the start date.
	if _, err := app.Reference.TaxesFor(date); err != nil {
		return nil, err
	}

	spot, err := app.Spot.FetchSpotPrices(ctx, date, result.PriceArea)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch spot prices: %w", err)
	}
	emissions, err := app.Emissions.FetchEmissions(ctx, date, result.PriceArea)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch CO2 emissions: %w", err)
	}
	tariffs, err := app.Tariffs.FetchTariffs(ctx, glnNumber, chargeTypeCode)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tariffs: %w", err)
	}

	co2 := AlignToTimestamps(emissions, spotTimestamps(spot), spotResolution(spot))
	rows, err := Compose(spot, TariffLookupFor(tariffs), co2, app.Reference.TaxesFor)
	if err != nil {
		return nil, err
	}
	composedRows.Add(float64(len(rows)))

	log.Info().
		Str("date", date.Format(time.DateOnly)).
		Str("area", result.PriceArea).
		Str("gln", glnNumber).
		Int("rows", len(rows)).
		Msg("composed prices")

	result.Records = rows
	return result, nil
}

// ResolveGridCompanyForAddress finds the grid company serving address.
func (app *App) ResolveGridCompanyForAddress(ctx context.Context, address string) (GridCompany, error) {
	id, err := app.Addresses.LookupGridCompanyID(ctx, address)
	if err != nil {
		return GridCompany{}, err
	}
	return app.Reference.Directory.FindByCompanyID(id)
}
