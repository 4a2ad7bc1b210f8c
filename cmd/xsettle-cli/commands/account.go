// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"strings"

	"github.com/33cn/xsettle/account"
	"github.com/33cn/xsettle/types"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// AccountCmd 账户推导
func AccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Derive sovereign, derivative and pallet accounts",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.AddCommand(
		SovereignCmd(),
		DerivativeCmd(),
		PalletCmd(),
		TreasuryCmd(),
	)
	return cmd
}

// SovereignCmd 其他链在本链的主权账户
func SovereignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sovereign",
		Short: "Sovereign account of a chain",
		RunE:  sovereign,
	}
	cmd.Flags().StringP("chain", "c", "parent", "chain kind: parent, sibling or child")
	cmd.Flags().Uint32P("id", "i", 0, "parachain id for sibling and child")
	return cmd
}

func sovereign(cmd *cobra.Command, args []string) error {
	kind, _ := cmd.Flags().GetString("chain")
	id, _ := cmd.Flags().GetUint32("id")
	var chain types.Chain
	switch strings.ToLower(kind) {
	case "parent", "relay":
		chain = types.ParentChain()
	case "sibling", "sibl":
		chain = types.SiblingChain(id)
	case "child", "para":
		chain = types.ChildChain(id)
	default:
		return errors.Wrapf(types.ErrInvalidLocation, "chain kind %s", kind)
	}
	return printJSON(cmd, accountResult(cmd, account.SovereignAccount(chain)))
}

// DerivativeCmd utility.as_derivative 使用的子账户
func DerivativeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "derivative",
		Short: "Derivative sub-account of an account",
		RunE:  derivative,
	}
	cmd.Flags().StringP("who", "w", "", "ss58 or hex account")
	cmd.Flags().Uint16P("index", "n", 0, "derivative index")
	cmd.MarkFlagRequired("who")
	return cmd
}

func derivative(cmd *cobra.Command, args []string) error {
	who, err := accountFlag(cmd, "who")
	if err != nil {
		return err
	}
	index, _ := cmd.Flags().GetUint16("index")
	return printJSON(cmd, accountResult(cmd, account.DerivativeAccount(who, index)))
}

// PalletCmd 模块账户
func PalletCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pallet",
		Short: "Pallet account of an 8 byte pallet id",
		RunE:  pallet,
	}
	cmd.Flags().StringP("id", "i", "", "pallet id, e.g. py/trsry")
	cmd.MarkFlagRequired("id")
	return cmd
}

func pallet(cmd *cobra.Command, args []string) error {
	s, _ := cmd.Flags().GetString("id")
	if len(s) != types.PalletIDLen {
		return errors.Wrapf(types.ErrInvalidAccount, "pallet id %q must be %d bytes", s, types.PalletIDLen)
	}
	var id [types.PalletIDLen]byte
	copy(id[:], s)
	return printJSON(cmd, accountResult(cmd, account.PalletAccount(id)))
}

// TreasuryCmd 配置中的国库账户
func TreasuryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "treasury",
		Short: "Treasury account of the configured chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return printJSON(cmd, accountResult(cmd, account.TreasuryAccount(cfg)))
		},
	}
}
