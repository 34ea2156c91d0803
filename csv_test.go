package main

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormatFloat(t *testing.T) {
	require.Equal(t, "NaN", formatFloat(nil, 2))
	require.Equal(t, "0.0688", formatFloat(floatPtr(0.068800003), 4))
	require.Equal(t, "94.25", formatFloat(floatPtr(94.25), 2))
}

func TestWriteCSV(t *testing.T) {
	spot := hourlySpot(time.Date(2024, 2, 23, 0, 0, 0, 0, Copenhagen), 68.800003, 70)
	rows, err := Compose(spot, constantLookup(interval(day(2024, 2, 19), nil, 0.1101)),
		[]AlignedEmission{{Timestamp: spot[0].TimestampUTC, CO2GramsPerKWh: floatPtr(94.25)}}, fixedTaxes(taxes2024))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeCSV(&buf, rows))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, "HourDK", records[0][0])
	require.Equal(t, []string{
		"2024-02-23T00:00:00+01:00",
		"2024-02-22T23:00:00Z",
		"0.068800",
		"0.7610",
		"0.0740",
		"0.0510",
		"0.1101",
		"94.25",
		"1.0649",
		"0.2662",
		"1.3311",
	}, records[1])
	require.Equal(t, "NaN", records[2][7])
}

func TestWriteCSVNoData(t *testing.T) {
	var buf bytes.Buffer
	require.Error(t, writeCSV(&buf, nil))
	require.Zero(t, buf.Len())
}
