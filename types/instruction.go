// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import "fmt"

// Instruction is one step of a cross-chain message. The set is closed.
type Instruction interface {
	Name() string
	instruction()
}

// WithdrawAsset puts assets into the holding register.
type WithdrawAsset struct {
	Assets Assets
}

// ReserveAssetDeposited mints derivative assets whose reserve is the origin.
type ReserveAssetDeposited struct {
	Assets Assets
}

// ClaimAsset reclaims assets previously trapped for the same origin.
type ClaimAsset struct {
	Assets Assets
	Ticket Hash
}

// ClearOrigin drops the origin for the rest of the message.
type ClearOrigin struct{}

// DescendOrigin appends a junction to the origin.
type DescendOrigin struct {
	Interior Junction
}

// BuyExecution pays for execution out of the holding register.
type BuyExecution struct {
	Fees        Asset
	WeightLimit WeightLimit
}

// OriginKind 派发 Transact 时使用的身份
type OriginKind uint8

// 与编码下标一致
const (
	OriginNative OriginKind = iota
	OriginSovereignAccount
	OriginSuperuser
	OriginXcm
)

func (k OriginKind) String() string {
	switch k {
	case OriginNative:
		return "Native"
	case OriginSovereignAccount:
		return "SovereignAccount"
	case OriginSuperuser:
		return "Superuser"
	case OriginXcm:
		return "Xcm"
	}
	return fmt.Sprintf("OriginKind(%d)", uint8(k))
}

// Transact dispatches an encoded call as the origin.
type Transact struct {
	OriginType          OriginKind
	RequireWeightAtMost Weight
	Call                []byte
}

// RefundSurplus refunds unused weight bought earlier in the message.
type RefundSurplus struct{}

// DepositAsset credits matching holding assets to the beneficiary.
type DepositAsset struct {
	Assets      AssetFilter
	MaxAssets   uint32
	Beneficiary Location
}

func (WithdrawAsset) instruction()         {}
func (ReserveAssetDeposited) instruction() {}
func (ClaimAsset) instruction()            {}
func (ClearOrigin) instruction()           {}
func (DescendOrigin) instruction()         {}
func (BuyExecution) instruction()          {}
func (Transact) instruction()              {}
func (RefundSurplus) instruction()         {}
func (DepositAsset) instruction()          {}

// Name 指令名
func (WithdrawAsset) Name() string { return "WithdrawAsset" }

// Name 指令名
func (ReserveAssetDeposited) Name() string { return "ReserveAssetDeposited" }

// Name 指令名
func (ClaimAsset) Name() string { return "ClaimAsset" }

// Name 指令名
func (ClearOrigin) Name() string { return "ClearOrigin" }

// Name 指令名
func (DescendOrigin) Name() string { return "DescendOrigin" }

// Name 指令名
func (BuyExecution) Name() string { return "BuyExecution" }

// Name 指令名
func (Transact) Name() string { return "Transact" }

// Name 指令名
func (RefundSurplus) Name() string { return "RefundSurplus" }

// Name 指令名
func (DepositAsset) Name() string { return "DepositAsset" }

// Xcm 有序指令序列
type Xcm []Instruction

// Names lists instruction names, used in logs.
func (x Xcm) Names() []string {
	names := make([]string, len(x))
	for i, inst := range x {
		names[i] = inst.Name()
	}
	return names
}

// WeightLimit caps the weight a BuyExecution or a message may use.
type WeightLimit struct {
	Limited bool
	Weight  Weight
}

// Unlimited no cap
func Unlimited() WeightLimit {
	return WeightLimit{}
}

// Limited caps at w
func Limited(w Weight) WeightLimit {
	return WeightLimit{Limited: true, Weight: w}
}

// Allows reports whether w fits in the limit.
func (l WeightLimit) Allows(w Weight) bool {
	return !l.Limited || w <= l.Weight
}

func (l WeightLimit) String() string {
	if !l.Limited {
		return "Unlimited"
	}
	return fmt.Sprintf("Limited(%d)", l.Weight)
}

// Message is an inbound message together with its execution ceiling.
type Message struct {
	Origin       Location
	Instructions Xcm
	WeightLimit  WeightLimit
}
