package flowmeter

import "math"

// Stats is an incremental accumulator over a stream of nonnegative real
// values. It retains only running moments (count, mean, M2, min, max) so
// memory does not grow with the number of observations, using Welford's
// recurrence for numerical stability at large counts. Semantics match the
// population moments: variance is E[x²] − (E[x])², not the sample variance.
type Stats struct {
	count int64
	mean  float64
	m2    float64
	sum   float64
	min   float64
	max   float64
}

// Append records a new observation.
func (s *Stats) Append(x float64) {
	s.count++
	s.sum += x
	delta := x - s.mean
	s.mean += delta / float64(s.count)
	delta2 := x - s.mean
	s.m2 += delta * delta2

	if s.count == 1 || x < s.min {
		s.min = x
	}
	if s.count == 1 || x > s.max {
		s.max = x
	}
}

// N returns the number of observations appended so far.
func (s *Stats) N() int64 { return s.count }

// Sum returns the running sum of all observations.
func (s *Stats) Sum() float64 { return s.sum }

// Min returns the minimum observation, or 0 if none have been appended.
func (s *Stats) Min() float64 {
	if s.count == 0 {
		return 0
	}
	return s.min
}

// Max returns the maximum observation, or 0 if none have been appended.
func (s *Stats) Max() float64 {
	if s.count == 0 {
		return 0
	}
	return s.max
}

// Mean returns the running mean, or 0 if none have been appended.
func (s *Stats) Mean() float64 {
	if s.count == 0 {
		return 0
	}
	return s.mean
}

// Variance returns the population variance, or 0 for n < 2.
func (s *Stats) Variance() float64 {
	if s.count < 2 {
		return 0
	}
	return s.m2 / float64(s.count)
}

// Std returns the population standard deviation, or 0 for n < 2.
func (s *Stats) Std() float64 {
	return math.Sqrt(s.Variance())
}
