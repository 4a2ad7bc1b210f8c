// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package network

import (
	"github.com/33cn/xsettle/node"
	"github.com/33cn/xsettle/types"
)

// 本地测试网络中的平行链
const (
	PioneerID uint32 = 2000
	BifrostID uint32 = 2001
)

var bifrostCfgString = `
Title="bifrost"
role="parachain"
paraId=2001
treasuryPalletId="bf/trsry"

[log]
loglevel = "debug"
logConsoleLevel = "info"
logFile = ""

[store]
driver="memdb"

[xcm]
unitWeight=200000000
maxInstructions=100
withdrawFromOrigin=true

[relay]
balancesPallet=4
transferKeepAliveCall=3
utilityPallet=24
asDerivativeCall=1
batchCall=0
existentialDeposit=33333333
transferWeight=8000000000

[[currency]]
symbol="KSM"
location=".."
existentialDeposit=100000000
decimals=12
unitsPerSecond=160000000000

[[currency]]
symbol="BNC"
location="GeneralKey(0x0001)"
existentialDeposit=10000000000
decimals=12
unitsPerSecond=12800000000000

[[currency]]
symbol="NEER"
location="../Parachain(2000)/GeneralKey(0x0000)"
existentialDeposit=1000000000000
decimals=18
unitsPerSecond=800000000000
`

// GetBifrostCfgstring 兄弟平行链 2001 的配置
func GetBifrostCfgstring() string {
	return bifrostCfgString
}

// LocalConfigs 中继链 kusama，平行链 pioneer(2000) 和 bifrost(2001)
func LocalConfigs() []*types.Config {
	return []*types.Config{
		types.InitCfgString(types.GetRelayCfgstring()),
		types.InitCfgString(types.GetDefaultCfgstring()),
		types.InitCfgString(GetBifrostCfgstring()),
	}
}

// NewLocal 按配置创建节点并组网
func NewLocal(cfgs ...*types.Config) (*Network, error) {
	if len(cfgs) == 0 {
		cfgs = LocalConfigs()
	}
	nw := New()
	for _, cfg := range cfgs {
		n, err := node.New(cfg)
		if err != nil {
			nw.Close()
			return nil, err
		}
		if err := nw.Add(n); err != nil {
			n.Close()
			nw.Close()
			return nil, err
		}
	}
	return nw, nil
}
