package models

import (
	"time"
)

// ProcessRecord is one day of synthetic process measurements
type ProcessRecord struct {
	Date       time.Time `json:"date"`
	ExpParam   float64   `json:"exp_param"`
	ConstParam float64   `json:"const_param"`
	RandParam  int64     `json:"rand_param"`
	SinParam   float64   `json:"sin_param"`
}

// Dataset is an ordered set of process records, one per day
type Dataset []ProcessRecord

// Dates returns the date column
func (d Dataset) Dates() []time.Time {
	out := make([]time.Time, len(d))
	for i, r := range d {
		out[i] = r.Date
	}
	return out
}

// ExpParams returns the exp_param column
func (d Dataset) ExpParams() []float64 {
	out := make([]float64, len(d))
	for i, r := range d {
		out[i] = r.ExpParam
	}
	return out
}

// ConstParams returns the const_param column
func (d Dataset) ConstParams() []float64 {
	out := make([]float64, len(d))
	for i, r := range d {
		out[i] = r.ConstParam
	}
	return out
}

// RandParams returns the rand_param column
func (d Dataset) RandParams() []int64 {
	out := make([]int64, len(d))
	for i, r := range d {
		out[i] = r.RandParam
	}
	return out
}

// SinParams returns the sin_param column
func (d Dataset) SinParams() []float64 {
	out := make([]float64, len(d))
	for i, r := range d {
		out[i] = r.SinParam
	}
	return out
}

// Between returns the records dated in [from, to).
func (d Dataset) Between(from, to time.Time) Dataset {
	var out Dataset
	for _, r := range d {
		if !r.Date.Before(from) && r.Date.Before(to) {
			out = append(out, r)
		}
	}
	return out
}
