package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// Helper function to format float64 values with precision
func formatFloat(val *float64, precision int) string {
	if val != nil {
		formatStr := fmt.Sprintf("%%.%df", precision)
		return fmt.Sprintf(formatStr, *val)
	}
	return "NaN"
}

// Write composed rows as CSV
func writeCSV(w io.Writer, data []ComposedPriceRow) error {
	if len(data) == 0 {
		return fmt.Errorf("no data to write CSV")
	}

	writer := csv.NewWriter(w)

	header := []string{
		"HourDK",
		"HourUTC",
		"SpotPrice",
		"Elafgift",
		"Nettarif",
		"Systemtarif",
		"NetselskabTarif",
		"CO2Emission",
		"TotalExMoms",
		"Moms",
		"Total",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, row := range data {
		record := []string{
			row.TimestampLocal.Format(time.RFC3339),
			row.TimestampUTC.Format(time.RFC3339),
			formatFloat(&row.SpotPricePerKWh, 6),
			formatFloat(&row.FixedTaxPerKWh, 4),
			formatFloat(&row.NetTransmissionTariffPerKWh, 4),
			formatFloat(&row.NetSystemTariffPerKWh, 4),
			formatFloat(&row.DistributionTariffPerKWh, 4),
			formatFloat(row.CO2GramsPerKWh, 2),
			formatFloat(&row.TotalExTax, 4),
			formatFloat(&row.TaxAmount, 4),
			formatFloat(&row.TotalIncTax, 4),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
