package main

import (
	"sort"
	"time"
)

// HourlyEmission is the mean CO2 intensity over one local clock hour.
type HourlyEmission struct {
	Hour           time.Time
	CO2GramsPerKWh float64
}

// AlignedEmission is the mean CO2 intensity over one target bucket. CO2 is
// nil when no samples fell in the bucket.
type AlignedEmission struct {
	Timestamp      time.Time
	CO2GramsPerKWh *float64
}

// ResampleToHours averages consecutive samples sharing the same local hour.
// Samples are expected in chronological order and are not re-sorted, so an
// hour that reappears later in the input starts a new group.
func ResampleToHours(samples []EmissionSample) []HourlyEmission {
	var out []HourlyEmission
	var (
		prefix string
		hour   time.Time
		sum    float64
		n      int
	)

	flush := func() {
		if n > 0 {
			out = append(out, HourlyEmission{Hour: hour, CO2GramsPerKWh: sum / float64(n)})
		}
	}

	for _, s := range samples {
		p := s.TimestampLocal.Format("2006-01-02T15")
		if p != prefix {
			flush()
			prefix = p
			hour = truncateToHour(s.TimestampLocal)
			sum, n = 0, 0
		}
		sum += s.CO2GramsPerKWh
		n++
	}
	flush()

	return out
}

// AlignToTimestamps averages the samples falling in [t, t+width) for every
// target t. The result has exactly one entry per target.
func AlignToTimestamps(samples []EmissionSample, targets []time.Time, width time.Duration) []AlignedEmission {
	sorted := make([]EmissionSample, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TimestampUTC.Before(sorted[j].TimestampUTC)
	})

	out := make([]AlignedEmission, len(targets))
	for i, t := range targets {
		out[i].Timestamp = t
		end := t.Add(width)

		lo := sort.Search(len(sorted), func(k int) bool {
			return !sorted[k].TimestampUTC.Before(t)
		})

		var sum float64
		var n int
		for k := lo; k < len(sorted) && sorted[k].TimestampUTC.Before(end); k++ {
			sum += sorted[k].CO2GramsPerKWh
			n++
		}
		if n > 0 {
			avg := sum / float64(n)
			out[i].CO2GramsPerKWh = &avg
		}
	}

	return out
}

func truncateToHour(t time.Time) time.Time {
	return t.Add(-time.Duration(t.Minute())*time.Minute -
		time.Duration(t.Second())*time.Second -
		time.Duration(t.Nanosecond()))
}
