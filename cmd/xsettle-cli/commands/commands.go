// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package commands xsettle-cli 的子命令
package commands

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/33cn/xsettle/common/address"
	"github.com/33cn/xsettle/common/log"
	"github.com/33cn/xsettle/node"
	"github.com/33cn/xsettle/types"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// NewRootCmd 命令入口
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "xsettle-cli",
		Short:         "cross-chain settlement tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("conf", "", "config file, the built-in parachain config if empty")
	root.PersistentFlags().Bool("relay", false, "use the built-in relay chain config")
	root.PersistentFlags().Uint16("prefix", address.KusamaPrefix, "ss58 address prefix")

	root.AddCommand(
		AccountCmd(),
		FeeCmd(),
		CallCmd(),
		MessageCmd(),
		BalanceCmd(),
		ExecuteCmd(),
	)
	return root
}

func loadConfig(cmd *cobra.Command) (*types.Config, error) {
	path, _ := cmd.Flags().GetString("conf")
	relay, _ := cmd.Flags().GetBool("relay")
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(types.ErrConfig, err.Error())
		}
		cfg, err := types.ParseConfig(string(data))
		if err != nil {
			return nil, err
		}
		log.SetFileLog(cfg.Log)
		return cfg, nil
	}
	if relay {
		return types.ParseConfig(types.GetRelayCfgstring())
	}
	return types.ParseConfig(types.GetDefaultCfgstring())
}

func openNode(cmd *cobra.Command) (*node.Node, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return node.New(cfg)
}

func encodeAddress(cmd *cobra.Command, id types.AccountID) string {
	prefix, _ := cmd.Flags().GetUint16("prefix")
	return address.Encode(id, prefix)
}

func accountFlag(cmd *cobra.Command, name string) (types.AccountID, error) {
	s, _ := cmd.Flags().GetString(name)
	id, err := address.ParseAccount(s)
	if err != nil {
		return id, errors.Wrapf(err, "--%s %s", name, s)
	}
	return id, nil
}

func hexFlag(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(types.ErrDecode, err.Error())
	}
	return b, nil
}

// currencyAmount 按符号查找币种，数量按币种精度解析
func currencyAmount(cfg *types.Config, symbol, amount string) (*types.Currency, uint64, error) {
	cur, ok := cfg.CurrencyBySymbol(symbol)
	if !ok {
		return nil, 0, errors.Wrapf(types.ErrUnknownCurrency, "symbol %s", symbol)
	}
	if amount == "" {
		return cur, 0, nil
	}
	v, err := types.ParseAmount(amount, cur.Decimals)
	return cur, v, err
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// AccountResult 账户输出
type AccountResult struct {
	Address string `json:"address"`
	Hex     string `json:"hex"`
}

func accountResult(cmd *cobra.Command, id types.AccountID) *AccountResult {
	return &AccountResult{Address: encodeAddress(cmd, id), Hex: id.Hex()}
}
