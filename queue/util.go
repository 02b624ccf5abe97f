package queue

import (
	"math/rand"
	"strings"

	"github.com/XANi/esphome2prom/esphome"
	"go.uber.org/zap"
)

const randASCII = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomString(i int) string {
	b := make([]byte, i)
	for i := range b {
		b[i] = randASCII[rand.Intn(len(randASCII))]
	}
	return string(b)
}

// siConversion scales milli/micro/kilo prefixed units to the base unit.
func siConversion(log *zap.SugaredLogger, e esphome.Entity, base string) func(float64) float64 {
	switch strings.ToLower(e.Unit) {
	case base:
		return func(v float64) float64 { return v }
	case "m" + base:
		return func(v float64) float64 { return v / 1000 }
	case "u" + base, "µ" + base, "μ" + base:
		return func(v float64) float64 { return v / (1000 * 1000) }
	case "k" + base:
		return func(v float64) float64 { return v * 1000 }
	}
	log.Warnf("sensor [%s] has unknown unit [%s], passing value as is", e, e.Unit)
	return func(v float64) float64 { return v }
}

func topicSegment(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '+', '#':
			return '_'
		}
		return r
	}, strings.ToLower(s))
}
