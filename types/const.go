// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

// Weight 执行权重，1e12 权重对应 1 秒执行时间
type Weight = uint64

// WeightPerSecond 每秒执行权重
const WeightPerSecond Weight = 1_000_000_000_000

// 默认参数
const (
	// DefaultUnitWeight 平行链每条指令的固定权重
	DefaultUnitWeight Weight = 200_000_000
	// DefaultMaxInstructions 单条消息最多指令数
	DefaultMaxInstructions = 100
	// DefaultTreasuryPalletID 国库 pallet id
	DefaultTreasuryPalletID = "bit/trsy"
	// PalletIDLen pallet id 固定 8 字节
	PalletIDLen = 8
)

// 解码上限，超出的消息直接拒绝
const (
	// MaxItemsInAssets 一个资产列表最多包含的资产数
	MaxItemsInAssets = 100
	// MaxDecodeInstructions 一条消息最多解码的指令数，配置的 maxInstructions 不能超过它
	MaxDecodeInstructions = 1024
)

// store key 前缀
const (
	AccountKeyPrefix = "mavl-"
	TrapKeyPrefix    = "xcm-trap-"
)

// Event kinds
const (
	EventDeposited      = "Deposited"
	EventWithdrawn      = "Withdrawn"
	EventTransferred    = "Transferred"
	EventFeePaid        = "FeePaid"
	EventDispatched     = "Dispatched"
	EventAssetsTrapped  = "AssetsTrapped"
	EventAssetsClaimed  = "AssetsClaimed"
	EventDustLost       = "DustLost"
	EventMessageSent    = "MessageSent"
	EventMessageHandled = "MessageHandled"
)
