package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/ninja0404/pumpfun-curve-sdk/pkg/curve"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/fixedpoint"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/pda"
)

// parsePubkey converts a base58 string to a PublicKey.
func parsePubkey(label, v string) (solana.PublicKey, error) {
	if v == "" {
		return solana.PublicKey{}, fmt.Errorf("%s is required", label)
	}
	return pda.ParseAddress(label, v)
}

// Amount flags take base units, or human units when a decimal point is present.
const (
	solAmountHelp   = "lamports, or SOL with a decimal point (0.5)"
	tokenAmountHelp = "token base units, or whole tokens with a decimal point (1000.0)"
)

func parseSol(v string) (math.Int, error) {
	return fixedpoint.NormalizeQuoteAmount(v)
}

func parseTokens(v string) (math.Int, error) {
	return fixedpoint.NormalizeBaseAmount(v)
}

func parseSlippage(v string) (fixedpoint.Bps, error) {
	return fixedpoint.NormalizeSlippageBps(v)
}

func commandContext(cmd *cobra.Command, opts *globalOpts) (context.Context, context.CancelFunc) {
	timeout := time.Duration(opts.timeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	// a send waits for confirmation on top of the RPC round trips
	return context.WithTimeout(cmd.Context(), 3*timeout)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type reservesView struct {
	VirtualTokenReserves string  `json:"virtualTokenReserves"`
	VirtualSolReserves   string  `json:"virtualSolReserves"`
	RealTokenReserves    string  `json:"realTokenReserves"`
	RealSolReserves      string  `json:"realSolReserves"`
	TokenTotalSupply     string  `json:"tokenTotalSupply"`
	Complete             bool    `json:"complete"`
	Creator              string  `json:"creator,omitempty"`
	Progress             float64 `json:"progress"`
	PriceLamports        string  `json:"priceLamportsPerToken"`
	MarketCapSol         string  `json:"marketCapSol"`
}

func viewReserves(r *curve.Reserves) reservesView {
	v := reservesView{
		VirtualTokenReserves: r.VirtualTokenReserves.String(),
		VirtualSolReserves:   r.VirtualSolReserves.String(),
		RealTokenReserves:    r.RealTokenReserves.String(),
		RealSolReserves:      r.RealSolReserves.String(),
		TokenTotalSupply:     r.TokenTotalSupply.String(),
		Complete:             r.Complete,
		Progress:             curve.Progress(r),
		// lamports per whole token
		PriceLamports: fixedpoint.FormatUnits(curve.Price(r), fixedpoint.QuoteDecimals-fixedpoint.BaseDecimals),
		MarketCapSol:  fixedpoint.FormatSol(curve.MarketCap(r)),
	}
	if r.HasCreator() {
		v.Creator = r.Creator.String()
	}
	return v
}

type buyQuoteView struct {
	TokensOut     string `json:"tokensOut"`
	CurveSolIn    string `json:"curveSolIn"`
	UserSolIn     string `json:"userSolIn"`
	MaxSolCost    string `json:"maxSolCost"`
	MaxSolCostSol string `json:"maxSolCostSol"`
}

func viewBuy(q curve.BuyQuote) buyQuoteView {
	return buyQuoteView{
		TokensOut:     q.BaseAmountOut.String(),
		CurveSolIn:    q.QuoteAmountIn.String(),
		UserSolIn:     q.UserQuoteAmountIn.String(),
		MaxSolCost:    q.QuoteInMax.String(),
		MaxSolCostSol: fixedpoint.FormatSol(q.QuoteInMax),
	}
}

type sellQuoteView struct {
	TokensIn        string `json:"tokensIn"`
	CurveSolOut     string `json:"curveSolOut"`
	UserSolOut      string `json:"userSolOut"`
	MinSolOutput    string `json:"minSolOutput"`
	MinSolOutputSol string `json:"minSolOutputSol"`
}

func viewSell(q curve.SellQuote) sellQuoteView {
	return sellQuoteView{
		TokensIn:        q.BaseAmountIn.String(),
		CurveSolOut:     q.QuoteAmountOut.String(),
		UserSolOut:      q.UserQuoteAmountOut.String(),
		MinSolOutput:    q.QuoteOutMin.String(),
		MinSolOutputSol: fixedpoint.FormatSol(q.QuoteOutMin),
	}
}
