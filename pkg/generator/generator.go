// Package generator produces the synthetic daily process dataset.
package generator

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/timeplus-io/processviz/pkg/models"
)

const (
	// DefaultLength is the number of daily records generated when Options.Length is unset
	DefaultLength = 2000

	constParam = 100.0
	randLow    = 98
	randHigh   = 102 // exclusive
)

// DefaultStart is the first generated date
var DefaultStart = time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)

// Options controls dataset generation
type Options struct {
	Length int
	Start  time.Time
	// Seed fixes rand_param. Zero draws a fresh seed, so rand_param differs between calls.
	Seed int64
}

// Generate builds one record per day starting at opts.Start.
// exp_param, const_param and sin_param depend only on the row offset.
func Generate(opts Options) models.Dataset {
	length := opts.Length
	if length <= 0 {
		length = DefaultLength
	}
	start := opts.Start
	if start.IsZero() {
		start = DefaultStart
	}
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)

	rng := newRand(opts.Seed)

	ds := make(models.Dataset, length)
	for i := range ds {
		exp := ExpParam(i)
		ds[i] = models.ProcessRecord{
			Date:       start.AddDate(0, 0, i),
			ExpParam:   exp,
			ConstParam: constParam,
			RandParam:  randLow + rng.Int64N(randHigh-randLow),
			SinParam:   SinParam(exp),
		}
	}
	return ds
}

// ExpParam is 100 + e^(offset/200 - 1)
func ExpParam(offset int) float64 {
	return 100 + math.Exp(float64(offset)/200-1)
}

// SinParam is sin(exp) + 100
func SinParam(exp float64) float64 {
	return math.Sin(exp) + 100
}

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
}
