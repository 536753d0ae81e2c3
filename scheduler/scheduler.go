// Package scheduler computes when the n-th request of a load run is due,
// measured from the start of the run.
package scheduler

import (
	"errors"
	"math"
	"time"
)

var ErrInvalidRate = errors.New("rate must be positive")

// Scheduler defines the interface to control the rate of request.
type Scheduler interface {
	Next(currentReq int64) (at time.Duration, ok bool)
}

type CountLimiter struct {
	s     Scheduler
	limit int64
}

func NewCountLimiter(s Scheduler, limit int64) CountLimiter {
	return CountLimiter{s, limit}
}

func (cl CountLimiter) Next(currentReq int64) (time.Duration, bool) {
	if currentReq >= cl.limit {
		return 0, false
	}
	return cl.s.Next(currentReq)
}

// DurationLimiter stops the schedule once a request would be due after d.
type DurationLimiter struct {
	s Scheduler
	d time.Duration
}

func NewDurationLimiter(s Scheduler, d time.Duration) DurationLimiter {
	return DurationLimiter{s, d}
}

func (dl DurationLimiter) Next(currentReq int64) (time.Duration, bool) {
	at, ok := dl.s.Next(currentReq)
	if !ok || at > dl.d {
		return 0, false
	}
	return at, true
}

// Constant sends freq requests per second.
type Constant struct {
	interval time.Duration
}

func NewConstant(freq float64) (Constant, error) {
	if !(freq > 0) || math.IsInf(freq, 1) {
		return Constant{}, ErrInvalidRate
	}
	return Constant{time.Duration(float64(time.Second) / freq)}, nil
}

func (c Constant) Next(currentReq int64) (time.Duration, bool) {
	return time.Duration(currentReq) * c.interval, true
}

// Unlimited sends every request immediately.
type Unlimited struct{}

func (Unlimited) Next(int64) (time.Duration, bool) { return 0, true }

// Line ramps the rate linearly from one value to another over d. The n-th
// request is due when the integral of the rate reaches n.
type Line struct {
	b           float64
	twoA        float64
	bSquare     float64
	billionDivA float64
	constant    *Constant
}

func NewLine(from, to float64, d time.Duration) (Line, error) {
	if from < 0 || to < 0 || (from == 0 && to == 0) || d <= 0 {
		return Line{}, ErrInvalidRate
	}
	if from == to {
		c, err := NewConstant(from)
		return Line{constant: &c}, err
	}

	a := (to - from) / d.Seconds()
	return Line{
		b:           from,
		twoA:        2 * a,
		bSquare:     from * from,
		billionDivA: 1e9 / a,
	}, nil
}

func (l Line) Next(currentReq int64) (time.Duration, bool) {
	if l.constant != nil {
		return l.constant.Next(currentReq)
	}
	disc := l.twoA*float64(currentReq) + l.bSquare
	if disc < 0 {
		// a falling rate reaches zero before this request is due
		return 0, false
	}
	return time.Duration((math.Sqrt(disc) - l.b) * l.billionDivA), true
}
