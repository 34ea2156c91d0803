package main

import (
	"fmt"
	"time"
)

// TaxLookup returns the fixed taxes in force on a calendar date.
type TaxLookup func(date time.Time) (FixedTaxes, error)

// Compose prices every spot record, in order. The distribution tariff and
// the fixed taxes are resolved per row from the row's own local date, so a
// change at midnight inside the window is honoured. CO2 values are matched
// by index; rows beyond the end of co2 get no CO2 value.
func Compose(spot []PriceRecord, tariffForDate TariffLookup, co2 []AlignedEmission, taxesForDate TaxLookup) ([]ComposedPriceRow, error) {
	rows := make([]ComposedPriceRow, 0, len(spot))

	for i, rec := range spot {
		local := rec.TimestampLocal.In(Copenhagen)
		tariff, err := tariffForDate(local)
		if err != nil {
			return nil, fmt.Errorf("resolving tariff for %s: %w", local.Format(time.RFC3339), err)
		}
		taxes, err := taxesForDate(local)
		if err != nil {
			return nil, fmt.Errorf("resolving taxes for %s: %w", local.Format(time.RFC3339), err)
		}

		row := ComposedPriceRow{
			TimestampLocal:              rec.TimestampLocal,
			TimestampUTC:                rec.TimestampUTC,
			SpotPricePerKWh:             rec.SpotPricePerMWh / 1000,
			FixedTaxPerKWh:              taxes.Elafgift,
			NetTransmissionTariffPerKWh: taxes.NetTransmission,
			NetSystemTariffPerKWh:       taxes.NetSystem,
			DistributionTariffPerKWh:    tariff.Rate(local.Hour() + 1),
		}
		if i < len(co2) {
			row.CO2GramsPerKWh = co2[i].CO2GramsPerKWh
		}

		row.TotalExTax = row.SpotPricePerKWh +
			row.FixedTaxPerKWh +
			row.NetTransmissionTariffPerKWh +
			row.NetSystemTariffPerKWh +
			row.DistributionTariffPerKWh
		// Explicit conversions stop the compiler fusing these into an FMA.
		row.TaxAmount = float64(row.TotalExTax * taxes.VATRate)
		row.TotalIncTax = float64(row.TotalExTax + row.TaxAmount)

		rows = append(rows, row)
	}

	return rows, nil
}

// spotResolution returns the smallest spacing between consecutive spot
// records. Skipped intervals leave wider gaps, so the first gap alone is not
// enough. Series too short to tell default to one hour.
func spotResolution(spot []PriceRecord) time.Duration {
	var res time.Duration
	for i := 1; i < len(spot); i++ {
		d := spot[i].TimestampUTC.Sub(spot[i-1].TimestampUTC)
		if d > 0 && (res == 0 || d < res) {
			res = d
		}
	}
	if res == 0 {
		return time.Hour
	}
	return res
}

func spotTimestamps(spot []PriceRecord) []time.Time {
	out := make([]time.Time, len(spot))
	for i, rec := range spot {
		out[i] = rec.TimestampUTC
	}
	return out
}
