// Package events extracts trade events from program logs, streams them over
// a websocket subscription and mirrors them into local reserves.
package events

import (
	"encoding/base64"
	"strings"

	"cosmossdk.io/math"

	"github.com/ninja0404/pumpfun-curve-sdk/pkg/curve"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/program/pump"
)

const programDataPrefix = "Program data: "

// ParseLogs returns the trade events found in a transaction's log messages,
// in log order. Lines that do not carry a decodable trade event are skipped.
func ParseLogs(logs []string) []pump.TradeEvent {
	var out []pump.TradeEvent
	for _, line := range logs {
		payload, ok := strings.CutPrefix(line, programDataPrefix)
		if !ok {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
		if err != nil || !pump.IsTradeEvent(data) {
			continue
		}
		ev, err := pump.DecodeTradeEvent(data)
		if err != nil {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// TradeFromEvent converts an event into a synchronization record.
func TradeFromEvent(ev pump.TradeEvent) curve.Trade {
	return curve.Trade{
		IsBuy:       ev.IsBuy,
		SolAmount:   math.NewIntFromUint64(ev.SolAmount),
		TokenAmount: math.NewIntFromUint64(ev.TokenAmount),
	}
}
