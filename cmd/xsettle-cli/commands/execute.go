// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"context"
	"sort"

	"github.com/33cn/xsettle/types"
	"github.com/spf13/cobra"
)

// BalanceCmd 账本查询与创世分配，对配置中的数据库操作
func BalanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Query or endow ledger balances in the configured store",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.AddCommand(
		QueryBalanceCmd(),
		EndowCmd(),
	)
	return cmd
}

// QueryBalanceCmd 查询余额
func QueryBalanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query balances of an account",
		RunE:  queryBalance,
	}
	cmd.Flags().StringP("addr", "a", "", "ss58 or hex account")
	cmd.Flags().StringP("symbol", "s", "", "currency symbol, all currencies if empty")
	cmd.MarkFlagRequired("addr")
	return cmd
}

// BalanceResult 一个币种的余额
type BalanceResult struct {
	Symbol   string `json:"symbol"`
	Location string `json:"location"`
	Balance  uint64 `json:"balance"`
	Pretty   string `json:"pretty"`
}

func queryBalance(cmd *cobra.Command, args []string) error {
	n, err := openNode(cmd)
	if err != nil {
		return err
	}
	defer n.Close()
	who, err := accountFlag(cmd, "addr")
	if err != nil {
		return err
	}
	symbol, _ := cmd.Flags().GetString("symbol")
	cfg := n.Config()
	currencies := cfg.Currency
	if symbol != "" {
		cur, _, err := currencyAmount(cfg, symbol, "")
		if err != nil {
			return err
		}
		currencies = []*types.Currency{cur}
	}
	res := make([]*BalanceResult, 0, len(currencies))
	for _, cur := range currencies {
		b := n.FreeBalance(cur.Loc(), who)
		res = append(res, &BalanceResult{
			Symbol:   cur.Symbol,
			Location: cur.Loc().String(),
			Balance:  b,
			Pretty:   types.FormatAmount(b, cur.Decimals),
		})
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].Symbol < res[j].Symbol })
	return printJSON(cmd, res)
}

// EndowCmd 创世分配
func EndowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "endow",
		Short: "Mint balance to an account",
		RunE:  endow,
	}
	cmd.Flags().StringP("addr", "a", "", "ss58 or hex account")
	cmd.Flags().StringP("symbol", "s", "", "currency symbol")
	cmd.Flags().StringP("amount", "m", "", "amount, e.g. 10.5")
	cmd.MarkFlagRequired("addr")
	cmd.MarkFlagRequired("symbol")
	cmd.MarkFlagRequired("amount")
	return cmd
}

func endow(cmd *cobra.Command, args []string) error {
	n, err := openNode(cmd)
	if err != nil {
		return err
	}
	defer n.Close()
	who, err := accountFlag(cmd, "addr")
	if err != nil {
		return err
	}
	symbol, _ := cmd.Flags().GetString("symbol")
	amountStr, _ := cmd.Flags().GetString("amount")
	cur, amount, err := currencyAmount(n.Config(), symbol, amountStr)
	if err != nil {
		return err
	}
	if err := n.Endow(cur.Loc(), who, amount); err != nil {
		return err
	}
	b := n.FreeBalance(cur.Loc(), who)
	return printJSON(cmd, &BalanceResult{Symbol: cur.Symbol, Location: cur.Loc().String(), Balance: b, Pretty: types.FormatAmount(b, cur.Decimals)})
}

// ExecuteCmd 以指定来源执行一条消息
func ExecuteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Execute a message payload against the configured store",
		RunE:  execute,
	}
	cmd.Flags().StringP("origin", "o", "..", "origin location, e.g. .. or ../Parachain(2001)")
	cmd.Flags().StringP("payload", "p", "", "hex encoded message payload")
	cmd.MarkFlagRequired("payload")
	return cmd
}

// ExecuteResult 执行结果和事件
type ExecuteResult struct {
	Hash    string         `json:"hash"`
	Outcome string         `json:"outcome"`
	Used    types.Weight   `json:"used"`
	Events  []*EventResult `json:"events"`
}

// EventResult 事件
type EventResult struct {
	Kind    string `json:"kind"`
	Account string `json:"account,omitempty"`
	Assets  string `json:"assets,omitempty"`
	Err     string `json:"err,omitempty"`
}

func execute(cmd *cobra.Command, args []string) error {
	n, err := openNode(cmd)
	if err != nil {
		return err
	}
	defer n.Close()
	s, _ := cmd.Flags().GetString("origin")
	origin, err := types.ParseLocation(s)
	if err != nil {
		return err
	}
	p, _ := cmd.Flags().GetString("payload")
	payload, err := hexFlag(p)
	if err != nil {
		return err
	}
	if err := n.Receive(origin, payload); err != nil {
		return err
	}
	if _, err := n.Process(context.Background()); err != nil {
		return err
	}
	handled := n.Handled()
	if len(handled) == 0 {
		return types.ErrNotFound
	}
	h := handled[len(handled)-1]
	res := &ExecuteResult{Hash: h.Hash.Hex(), Outcome: h.Outcome.String(), Used: h.Outcome.Used}
	for _, ev := range n.Events().Events() {
		er := &EventResult{Kind: ev.Kind}
		if !ev.Account.IsZero() {
			er.Account = encodeAddress(cmd, ev.Account)
		}
		if len(ev.Assets) > 0 {
			er.Assets = ev.Assets.String()
		}
		if ev.Err != nil {
			er.Err = ev.Err.Error()
		}
		res.Events = append(res.Events, er)
	}
	return printJSON(cmd, res)
}
