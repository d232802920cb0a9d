package probe

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"

	"github.com/okian/fraudboard/internal/domain/feature"
	"github.com/okian/fraudboard/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	timeSpanSeconds    = 172792
)

// Ranges for the two transaction profiles.
const (
	normalAmountMax     = 200.0
	suspiciousAmountMin = 500.0
	suspiciousAmountMax = 2500.0
	normalSpread        = 2.0
	suspiciousShift     = -6.0
	suspiciousSpread    = 4.0
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// generateRequests creates n transactions. A fraudRatio share uses the
// suspicious profile: large amounts and strongly negative components.
func generateRequests(ctx context.Context, n int, fraudRatio float64) ([]Request, error) {
	logger.Get().Info(ctx, "generating transactions",
		logger.Int("count", n),
		logger.Float64("fraudRatio", fraudRatio),
	)
	out := make([]Request, n)
	for i := range out {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during generation: %w", err)
		}
		out[i] = generateRequest(getRandomFloat() < fraudRatio)
	}
	return out, nil
}

func generateRequest(suspicious bool) Request {
	req := Request{
		Time:      format(getRandomFloat() * timeSpanSeconds),
		VFeatures: make([]string, feature.Components),
	}
	if suspicious {
		req.Amount = format(suspiciousAmountMin + getRandomFloat()*(suspiciousAmountMax-suspiciousAmountMin))
	} else {
		req.Amount = format(getRandomFloat() * normalAmountMax)
	}
	for i := range req.VFeatures {
		v := (getRandomFloat()*2 - 1) * normalSpread
		if suspicious {
			v = suspiciousShift + (getRandomFloat()*2-1)*suspiciousSpread
		}
		req.VFeatures[i] = format(v)
	}
	return req
}
