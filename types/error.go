// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import "errors"

// 消息执行错误
var (
	ErrBarrierDenied            = errors.New("ErrBarrierDenied")
	ErrWeightLimitTooLow        = errors.New("ErrWeightLimitTooLow")
	ErrTooExpensive             = errors.New("ErrTooExpensive")
	ErrInsufficientBalance      = errors.New("ErrInsufficientBalance")
	ErrInvalidAmount            = errors.New("ErrInvalidAmount")
	ErrDispatchFailed           = errors.New("ErrDispatchFailed")
	ErrWeightLimitReached       = errors.New("ErrWeightLimitReached")
	ErrWeightNotComputable      = errors.New("ErrWeightNotComputable")
	ErrNotHoldingFees           = errors.New("ErrNotHoldingFees")
	ErrUntrustedReserveLocation = errors.New("ErrUntrustedReserveLocation")
	ErrLocationNotInvertible    = errors.New("ErrLocationNotInvertible")
	ErrBadOrigin                = errors.New("ErrBadOrigin")
	ErrAssetNotFound            = errors.New("ErrAssetNotFound")
	ErrUnknownClaim             = errors.New("ErrUnknownClaim")
	ErrExistentialDeposit       = errors.New("ErrExistentialDeposit")
	ErrCallDecode               = errors.New("ErrCallDecode")
	ErrUnroutable               = errors.New("ErrUnroutable")
)

// 数据与配置错误
var (
	ErrInvalidLocation = errors.New("ErrInvalidLocation")
	ErrLocationFull    = errors.New("ErrLocationFull")
	ErrInvalidAccount  = errors.New("ErrInvalidAccount")
	ErrDecode          = errors.New("ErrDecode")
	ErrUnknownCurrency = errors.New("ErrUnknownCurrency")
	ErrConfig          = errors.New("ErrConfig")
	ErrOverflow        = errors.New("ErrOverflow")
	ErrNotFound        = errors.New("ErrNotFound")
)
