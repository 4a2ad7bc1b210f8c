// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"github.com/33cn/xsettle/executor"
	"github.com/33cn/xsettle/types"
	"github.com/spf13/cobra"
)

// FeeCmd 手续费
func FeeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fee",
		Short: "Execution fee tools",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.AddCommand(QuoteCmd())
	return cmd
}

// QuoteCmd 按配置的价格计算购买权重需要的手续费
func QuoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote the fee for a weight, or for a number of plain instructions",
		RunE:  quote,
	}
	cmd.Flags().StringP("symbol", "s", "KSM", "fee currency symbol")
	cmd.Flags().Uint64P("weight", "w", 0, "weight to buy")
	cmd.Flags().IntP("instructions", "n", 0, "instruction count, used when weight is 0")
	return cmd
}

// QuoteResult 报价
type QuoteResult struct {
	Symbol string       `json:"symbol"`
	Weight types.Weight `json:"weight"`
	Amount uint64       `json:"amount"`
	Pretty string       `json:"pretty"`
}

func quote(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	symbol, _ := cmd.Flags().GetString("symbol")
	weight, _ := cmd.Flags().GetUint64("weight")
	n, _ := cmd.Flags().GetInt("instructions")
	cur, _, err := currencyAmount(cfg, symbol, "")
	if err != nil {
		return err
	}
	if weight == 0 {
		weight = cfg.Xcm.UnitWeight * types.Weight(n)
	}
	amount, err := executor.NewRateTable(cfg).Quote(weight, cur.Loc())
	if err != nil {
		return err
	}
	return printJSON(cmd, &QuoteResult{
		Symbol: cur.Symbol,
		Weight: weight,
		Amount: amount,
		Pretty: types.FormatAmount(amount, cur.Decimals),
	})
}
