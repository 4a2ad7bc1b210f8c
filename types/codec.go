// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"bytes"
	"encoding/hex"
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v3/scale"
	gsrpc "github.com/centrifuge/go-substrate-rpc-client/v3/types"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// XcmVersion 消息负载使用的版本前缀
const XcmVersion byte = 2

// 解码时单个字节串的上限
const maxDecodeBytes = 1 << 20

// 指令编码下标
const (
	opWithdrawAsset         byte = 0
	opReserveAssetDeposited byte = 1
	opTransact              byte = 6
	opClearOrigin           byte = 10
	opDescendOrigin         byte = 11
	opDepositAsset          byte = 13
	opBuyExecution          byte = 19
	opRefundSurplus         byte = 20
	opClaimAsset            byte = 24
)

// HashLen hash 长度
const HashLen = 32

// Hash blake2b-256 摘要
type Hash [HashLen]byte

// Hex 0x 前缀
func (h Hash) Hex() string {
	return "0x" + hex.EncodeToString(h[:])
}

func (h Hash) String() string {
	return h.Hex()
}

// HashOf blake2b-256 of b.
func HashOf(b []byte) Hash {
	return Hash(blake2b.Sum256(b))
}

// EncodeToBytes SCALE encodes any value the gsrpc codec understands.
func EncodeToBytes(v interface{}) ([]byte, error) {
	return gsrpc.EncodeToBytes(v)
}

// DecodeFromBytes SCALE decodes into target.
func DecodeFromBytes(b []byte, target interface{}) error {
	if err := gsrpc.DecodeFromBytes(b, target); err != nil {
		return errors.Wrap(ErrDecode, err.Error())
	}
	return nil
}

// MustEncode panics on encode failure; the values encoded here are all well formed.
func MustEncode(v interface{}) []byte {
	b, err := EncodeToBytes(v)
	if err != nil {
		panic(err)
	}
	return b
}

// EncodeCompact writes a SCALE compact integer.
func EncodeCompact(e scale.Encoder, v uint64) error {
	return e.EncodeUintCompact(*new(big.Int).SetUint64(v))
}

// DecodeCompact reads a SCALE compact integer that must fit in 64 bits.
func DecodeCompact(d scale.Decoder) (uint64, error) {
	v, err := d.DecodeUintCompact()
	if err != nil {
		return 0, errors.Wrap(ErrDecode, err.Error())
	}
	if !v.IsUint64() {
		return 0, errors.Wrap(ErrOverflow, v.String())
	}
	return v.Uint64(), nil
}

// EncodeBytes writes a length prefixed byte string.
func EncodeBytes(e scale.Encoder, b []byte) error {
	if err := EncodeCompact(e, uint64(len(b))); err != nil {
		return err
	}
	return e.Write(b)
}

// DecodeBytes reads a length prefixed byte string.
func DecodeBytes(d scale.Decoder) ([]byte, error) {
	n, err := DecodeCompact(d)
	if err != nil {
		return nil, err
	}
	if n > maxDecodeBytes {
		return nil, errors.Wrapf(ErrDecode, "byte string too long %d", n)
	}
	b := make([]byte, n)
	if err := d.Read(b); err != nil {
		return nil, errors.Wrap(ErrDecode, err.Error())
	}
	return b, nil
}

func readByte(d scale.Decoder) (byte, error) {
	b, err := d.ReadOneByte()
	if err != nil {
		return 0, errors.Wrap(ErrDecode, err.Error())
	}
	return b, nil
}

// Encode junction
func (j Junction) Encode(e scale.Encoder) error {
	if err := e.PushByte(byte(j.Kind)); err != nil {
		return err
	}
	switch j.Kind {
	case JunctionParachain:
		return EncodeCompact(e, uint64(j.ParaID))
	case JunctionAccountID32:
		// network: Any
		if err := e.PushByte(0); err != nil {
			return err
		}
		return e.Write(j.Account[:])
	case JunctionGeneralIndex:
		return EncodeCompact(e, j.Index)
	case JunctionGeneralKey:
		return EncodeBytes(e, j.Key)
	}
	return errors.Wrapf(ErrInvalidLocation, "junction kind %d", j.Kind)
}

// Decode junction
func (j *Junction) Decode(d scale.Decoder) error {
	kind, err := readByte(d)
	if err != nil {
		return err
	}
	*j = Junction{Kind: JunctionKind(kind)}
	switch j.Kind {
	case JunctionParachain:
		id, err := DecodeCompact(d)
		if err != nil {
			return err
		}
		if id > uint64(^uint32(0)) {
			return errors.Wrapf(ErrOverflow, "para id %d", id)
		}
		j.ParaID = uint32(id)
	case JunctionAccountID32:
		network, err := readByte(d)
		if err != nil {
			return err
		}
		if network != 0 {
			return errors.Wrapf(ErrDecode, "unsupported network %d", network)
		}
		if err := d.Read(j.Account[:]); err != nil {
			return errors.Wrap(ErrDecode, err.Error())
		}
	case JunctionGeneralIndex:
		if j.Index, err = DecodeCompact(d); err != nil {
			return err
		}
	case JunctionGeneralKey:
		if j.Key, err = DecodeBytes(d); err != nil {
			return err
		}
	default:
		return errors.Wrapf(ErrDecode, "junction kind %d", kind)
	}
	return nil
}

func encodeJunctions(e scale.Encoder, js []Junction) error {
	if len(js) > MaxJunctions {
		return ErrLocationFull
	}
	if err := e.PushByte(byte(len(js))); err != nil {
		return err
	}
	for _, j := range js {
		if err := j.Encode(e); err != nil {
			return err
		}
	}
	return nil
}

func decodeJunctions(d scale.Decoder) ([]Junction, error) {
	n, err := readByte(d)
	if err != nil {
		return nil, err
	}
	if n > MaxJunctions {
		return nil, errors.Wrapf(ErrDecode, "junctions variant %d", n)
	}
	if n == 0 {
		return nil, nil
	}
	js := make([]Junction, n)
	for i := range js {
		if err := js[i].Decode(d); err != nil {
			return nil, err
		}
	}
	return js, nil
}

// Encode location
func (l Location) Encode(e scale.Encoder) error {
	if err := e.PushByte(l.Parents); err != nil {
		return err
	}
	return encodeJunctions(e, l.Interior)
}

// Decode location
func (l *Location) Decode(d scale.Decoder) error {
	parents, err := readByte(d)
	if err != nil {
		return err
	}
	interior, err := decodeJunctions(d)
	if err != nil {
		return err
	}
	*l = Location{Parents: parents, Interior: interior}
	return nil
}

// Encode concrete fungible asset
func (a Asset) Encode(e scale.Encoder) error {
	// AssetId::Concrete
	if err := e.PushByte(0); err != nil {
		return err
	}
	if err := a.ID.Encode(e); err != nil {
		return err
	}
	// Fungibility::Fungible
	if err := e.PushByte(0); err != nil {
		return err
	}
	return EncodeCompact(e, a.Amount)
}

// Decode concrete fungible asset
func (a *Asset) Decode(d scale.Decoder) error {
	tag, err := readByte(d)
	if err != nil {
		return err
	}
	if tag != 0 {
		return errors.Wrap(ErrDecode, "abstract asset id")
	}
	if err := a.ID.Decode(d); err != nil {
		return err
	}
	if tag, err = readByte(d); err != nil {
		return err
	}
	if tag != 0 {
		return errors.Wrap(ErrDecode, "non fungible asset")
	}
	a.Amount, err = DecodeCompact(d)
	return err
}

// Encode asset list
func (as Assets) Encode(e scale.Encoder) error {
	if err := EncodeCompact(e, uint64(len(as))); err != nil {
		return err
	}
	for _, a := range as {
		if err := a.Encode(e); err != nil {
			return err
		}
	}
	return nil
}

// Decode asset list
func (as *Assets) Decode(d scale.Decoder) error {
	n, err := DecodeCompact(d)
	if err != nil {
		return err
	}
	if n > MaxItemsInAssets {
		return errors.Wrapf(ErrDecode, "asset list too long %d", n)
	}
	out := make(Assets, 0)
	for i := uint64(0); i < n; i++ {
		var a Asset
		if err := a.Decode(d); err != nil {
			return err
		}
		out = append(out, a)
	}
	*as = out
	return nil
}

// Encode filter
func (f AssetFilter) Encode(e scale.Encoder) error {
	if f.Wild {
		// Wild(All)
		if err := e.PushByte(1); err != nil {
			return err
		}
		return e.PushByte(0)
	}
	if err := e.PushByte(0); err != nil {
		return err
	}
	return f.Definite.Encode(e)
}

// Decode filter
func (f *AssetFilter) Decode(d scale.Decoder) error {
	tag, err := readByte(d)
	if err != nil {
		return err
	}
	switch tag {
	case 0:
		*f = AssetFilter{}
		return f.Definite.Decode(d)
	case 1:
		wild, err := readByte(d)
		if err != nil {
			return err
		}
		if wild != 0 {
			return errors.Wrapf(ErrDecode, "wild filter %d", wild)
		}
		*f = WildAll()
		return nil
	}
	return errors.Wrapf(ErrDecode, "asset filter %d", tag)
}

// Encode weight limit
func (l WeightLimit) Encode(e scale.Encoder) error {
	if !l.Limited {
		return e.PushByte(0)
	}
	if err := e.PushByte(1); err != nil {
		return err
	}
	return EncodeCompact(e, l.Weight)
}

// Decode weight limit
func (l *WeightLimit) Decode(d scale.Decoder) error {
	tag, err := readByte(d)
	if err != nil {
		return err
	}
	switch tag {
	case 0:
		*l = Unlimited()
		return nil
	case 1:
		w, err := DecodeCompact(d)
		if err != nil {
			return err
		}
		*l = Limited(w)
		return nil
	}
	return errors.Wrapf(ErrDecode, "weight limit %d", tag)
}

// Encode hash as raw bytes
func (h Hash) Encode(e scale.Encoder) error {
	return e.Write(h[:])
}

// Decode hash
func (h *Hash) Decode(d scale.Decoder) error {
	if err := d.Read(h[:]); err != nil {
		return errors.Wrap(ErrDecode, err.Error())
	}
	return nil
}

// 领取凭证在链上以 GeneralKey(hash) 位置表示
func ticketLocation(h Hash) Location {
	return Location{Interior: []Junction{GeneralKey(h[:])}}
}

func ticketFromLocation(l Location) (Hash, error) {
	var h Hash
	if l.Parents != 0 || len(l.Interior) != 1 || l.Interior[0].Kind != JunctionGeneralKey || len(l.Interior[0].Key) != HashLen {
		return h, errors.Wrapf(ErrDecode, "claim ticket %s", l)
	}
	copy(h[:], l.Interior[0].Key)
	return h, nil
}

// EncodeInstruction writes one instruction.
func EncodeInstruction(e scale.Encoder, inst Instruction) error {
	switch v := inst.(type) {
	case WithdrawAsset:
		if err := e.PushByte(opWithdrawAsset); err != nil {
			return err
		}
		return v.Assets.Encode(e)
	case ReserveAssetDeposited:
		if err := e.PushByte(opReserveAssetDeposited); err != nil {
			return err
		}
		return v.Assets.Encode(e)
	case ClaimAsset:
		if err := e.PushByte(opClaimAsset); err != nil {
			return err
		}
		if err := v.Assets.Encode(e); err != nil {
			return err
		}
		return ticketLocation(v.Ticket).Encode(e)
	case ClearOrigin:
		return e.PushByte(opClearOrigin)
	case DescendOrigin:
		if err := e.PushByte(opDescendOrigin); err != nil {
			return err
		}
		return encodeJunctions(e, []Junction{v.Interior})
	case BuyExecution:
		if err := e.PushByte(opBuyExecution); err != nil {
			return err
		}
		if err := v.Fees.Encode(e); err != nil {
			return err
		}
		return v.WeightLimit.Encode(e)
	case Transact:
		if err := e.PushByte(opTransact); err != nil {
			return err
		}
		if err := e.PushByte(byte(v.OriginType)); err != nil {
			return err
		}
		if err := EncodeCompact(e, v.RequireWeightAtMost); err != nil {
			return err
		}
		return EncodeBytes(e, v.Call)
	case RefundSurplus:
		return e.PushByte(opRefundSurplus)
	case DepositAsset:
		if err := e.PushByte(opDepositAsset); err != nil {
			return err
		}
		if err := v.Assets.Encode(e); err != nil {
			return err
		}
		if err := EncodeCompact(e, uint64(v.MaxAssets)); err != nil {
			return err
		}
		return v.Beneficiary.Encode(e)
	}
	return errors.Errorf("unknown instruction %T", inst)
}

// DecodeInstruction reads one instruction.
func DecodeInstruction(d scale.Decoder) (Instruction, error) {
	op, err := readByte(d)
	if err != nil {
		return nil, err
	}
	switch op {
	case opWithdrawAsset:
		var v WithdrawAsset
		err = v.Assets.Decode(d)
		return v, err
	case opReserveAssetDeposited:
		var v ReserveAssetDeposited
		err = v.Assets.Decode(d)
		return v, err
	case opClaimAsset:
		var v ClaimAsset
		if err = v.Assets.Decode(d); err != nil {
			return nil, err
		}
		var ticket Location
		if err = ticket.Decode(d); err != nil {
			return nil, err
		}
		v.Ticket, err = ticketFromLocation(ticket)
		return v, err
	case opClearOrigin:
		return ClearOrigin{}, nil
	case opDescendOrigin:
		js, err := decodeJunctions(d)
		if err != nil {
			return nil, err
		}
		if len(js) != 1 {
			return nil, errors.Wrapf(ErrDecode, "descend origin with %d junctions", len(js))
		}
		return DescendOrigin{Interior: js[0]}, nil
	case opBuyExecution:
		var v BuyExecution
		if err = v.Fees.Decode(d); err != nil {
			return nil, err
		}
		err = v.WeightLimit.Decode(d)
		return v, err
	case opTransact:
		var v Transact
		kind, err := readByte(d)
		if err != nil {
			return nil, err
		}
		if kind > byte(OriginXcm) {
			return nil, errors.Wrapf(ErrDecode, "origin kind %d", kind)
		}
		v.OriginType = OriginKind(kind)
		if v.RequireWeightAtMost, err = DecodeCompact(d); err != nil {
			return nil, err
		}
		v.Call, err = DecodeBytes(d)
		return v, err
	case opRefundSurplus:
		return RefundSurplus{}, nil
	case opDepositAsset:
		var v DepositAsset
		if err = v.Assets.Decode(d); err != nil {
			return nil, err
		}
		max, err := DecodeCompact(d)
		if err != nil {
			return nil, err
		}
		if max > uint64(^uint32(0)) {
			return nil, errors.Wrapf(ErrOverflow, "max assets %d", max)
		}
		v.MaxAssets = uint32(max)
		err = v.Beneficiary.Decode(d)
		return v, err
	}
	return nil, errors.Wrapf(ErrDecode, "unsupported instruction %d", op)
}

// Encode instruction list
func (x Xcm) Encode(e scale.Encoder) error {
	if err := EncodeCompact(e, uint64(len(x))); err != nil {
		return err
	}
	for _, inst := range x {
		if err := EncodeInstruction(e, inst); err != nil {
			return err
		}
	}
	return nil
}

// Decode instruction list
func (x *Xcm) Decode(d scale.Decoder) error {
	n, err := DecodeCompact(d)
	if err != nil {
		return err
	}
	if n > MaxDecodeInstructions {
		return errors.Wrapf(ErrDecode, "too many instructions %d", n)
	}
	out := make(Xcm, 0)
	for i := uint64(0); i < n; i++ {
		inst, err := DecodeInstruction(d)
		if err != nil {
			return errors.WithMessagef(err, "instruction %d", i)
		}
		out = append(out, inst)
	}
	*x = out
	return nil
}

// EncodeXcm encodes a versioned message payload.
func EncodeXcm(x Xcm) ([]byte, error) {
	var buf bytes.Buffer
	e := scale.NewEncoder(&buf)
	if err := e.PushByte(XcmVersion); err != nil {
		return nil, err
	}
	if err := x.Encode(*e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeXcm decodes a versioned message payload; trailing bytes are rejected.
func DecodeXcm(payload []byte) (Xcm, error) {
	r := bytes.NewReader(payload)
	d := scale.NewDecoder(r)
	version, err := readByte(*d)
	if err != nil {
		return nil, err
	}
	if version != XcmVersion {
		return nil, errors.Wrapf(ErrDecode, "unsupported version %d", version)
	}
	var x Xcm
	if err := x.Decode(*d); err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, errors.Wrapf(ErrDecode, "%d trailing bytes", r.Len())
	}
	return x, nil
}

// MessageHash identifies a message payload.
func MessageHash(x Xcm) Hash {
	b, err := EncodeXcm(x)
	if err != nil {
		panic(err)
	}
	return HashOf(b)
}
