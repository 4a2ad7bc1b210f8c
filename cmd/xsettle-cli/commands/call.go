// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"encoding/hex"
	"fmt"

	"github.com/33cn/xsettle/executor"
	"github.com/33cn/xsettle/relaychain"
	"github.com/33cn/xsettle/types"
	"github.com/spf13/cobra"
)

// CallCmd 中继链调用编码
func CallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call",
		Short: "Encode relay chain calls",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.AddCommand(
		TransferCallCmd(),
		BatchCallCmd(),
	)
	return cmd
}

// TransferCallCmd balances.transfer_keep_alive，可选 as_derivative 包装
func TransferCallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Encode balances.transfer_keep_alive",
		RunE:  transferCall,
	}
	cmd.Flags().StringP("dest", "d", "", "ss58 or hex destination")
	cmd.Flags().StringP("amount", "a", "", "amount in relay currency, e.g. 1.5")
	cmd.Flags().Int32P("derivative", "n", -1, "wrap in utility.as_derivative with this index")
	cmd.MarkFlagRequired("dest")
	cmd.MarkFlagRequired("amount")
	return cmd
}

// relayCurrency 中继链原生资产，平行链上为 "..", 中继链上为 Here
func relayCurrency(cfg *types.Config) (*types.Currency, bool) {
	native := types.ParentLocation()
	if cfg.IsRelay() {
		native = types.Here()
	}
	return cfg.CurrencyOf(native)
}

func transferCall(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	dest, err := accountFlag(cmd, "dest")
	if err != nil {
		return err
	}
	s, _ := cmd.Flags().GetString("amount")
	cur, ok := relayCurrency(cfg)
	if !ok {
		return types.ErrUnknownCurrency
	}
	amount, err := types.ParseAmount(s, cur.Decimals)
	if err != nil {
		return err
	}
	b := relaychain.NewCallBuilder(cfg)
	call, err := b.BuildTransfer(dest, amount)
	if err != nil {
		return err
	}
	if index, _ := cmd.Flags().GetInt32("derivative"); index >= 0 {
		call = b.WrapAsDerivative(call, uint16(index))
	}
	fmt.Fprintln(cmd.OutOrStdout(), "0x"+hex.EncodeToString(call))
	return nil
}

// BatchCallCmd utility.batch
func BatchCallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Encode utility.batch of encoded calls",
		RunE:  batchCall,
	}
	cmd.Flags().StringSliceP("call", "c", nil, "hex encoded call, repeatable")
	cmd.MarkFlagRequired("call")
	return cmd
}

func batchCall(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	hexes, _ := cmd.Flags().GetStringSlice("call")
	calls := make([][]byte, 0, len(hexes))
	for _, h := range hexes {
		c, err := hexFlag(h)
		if err != nil {
			return err
		}
		calls = append(calls, c)
	}
	batch := relaychain.NewCallBuilder(cfg).Batch(calls...)
	fmt.Fprintln(cmd.OutOrStdout(), "0x"+hex.EncodeToString(batch))
	return nil
}

// MessageCmd 消息编码
func MessageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "message",
		Short: "Build and inspect messages",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.AddCommand(
		FinalizeCmd(),
		DecodeMessageCmd(),
	)
	return cmd
}

// FinalizeCmd 把调用包装成发往中继链的 Transact 消息
func FinalizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "finalize",
		Short: "Wrap an encoded call into a paid Transact message for the relay chain",
		RunE:  finalize,
	}
	cmd.Flags().StringP("call", "c", "", "hex encoded call")
	cmd.Flags().StringP("fee", "f", "", "fee in relay currency")
	cmd.Flags().Uint64P("weight", "w", 0, "weight required by the call")
	cmd.Flags().Bool("refund", false, "refund unspent fees to the parachain sovereign account")
	cmd.MarkFlagRequired("call")
	cmd.MarkFlagRequired("fee")
	cmd.MarkFlagRequired("weight")
	return cmd
}

// MessageResult 编码后的消息
type MessageResult struct {
	Instructions []string     `json:"instructions"`
	Weight       types.Weight `json:"weight,omitempty"`
	Hash         string       `json:"hash"`
	Payload      string       `json:"payload"`
}

func messageResult(cfg *types.Config, xcm types.Xcm) (*MessageResult, error) {
	payload, err := types.EncodeXcm(xcm)
	if err != nil {
		return nil, err
	}
	w := executor.FixedWeightBounds{UnitWeight: cfg.Xcm.UnitWeight, MaxInstructions: cfg.Xcm.MaxInstructions}
	weight, _ := w.Weight(xcm)
	return &MessageResult{
		Instructions: xcm.Names(),
		Weight:       weight,
		Hash:         types.MessageHash(xcm).Hex(),
		Payload:      "0x" + hex.EncodeToString(payload),
	}, nil
}

func finalize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, _ := cmd.Flags().GetString("call")
	call, err := hexFlag(s)
	if err != nil {
		return err
	}
	feeStr, _ := cmd.Flags().GetString("fee")
	cur, ok := relayCurrency(cfg)
	if !ok {
		return types.ErrUnknownCurrency
	}
	fee, err := types.ParseAmount(feeStr, cur.Decimals)
	if err != nil {
		return err
	}
	weight, _ := cmd.Flags().GetUint64("weight")
	refund, _ := cmd.Flags().GetBool("refund")

	b := relaychain.NewCallBuilder(cfg)
	xcm := b.FinalizeIntoMessage(call, fee, weight)
	if refund {
		xcm = b.FinalizeWithRefund(call, fee, weight)
	}
	// 消息在中继链上执行，权重按中继链的指令单位估算
	res, err := messageResult(types.InitCfgString(types.GetRelayCfgstring()), xcm)
	if err != nil {
		return err
	}
	return printJSON(cmd, res)
}

// DecodeMessageCmd 解码消息
func DecodeMessageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode a versioned message payload",
		RunE:  decodeMessage,
	}
	cmd.Flags().StringP("payload", "p", "", "hex encoded payload")
	cmd.MarkFlagRequired("payload")
	return cmd
}

func decodeMessage(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, _ := cmd.Flags().GetString("payload")
	payload, err := hexFlag(s)
	if err != nil {
		return err
	}
	xcm, err := types.DecodeXcm(payload)
	if err != nil {
		return err
	}
	res, err := messageResult(cfg, xcm)
	if err != nil {
		return err
	}
	return printJSON(cmd, res)
}
