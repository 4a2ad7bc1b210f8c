// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"strings"

	tml "github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// 链角色
const (
	RoleRelay     = "relay"
	RoleParachain = "parachain"
)

// Config 节点配置，启动时加载一次
type Config struct {
	Title            string       `toml:"Title"`
	Role             string       `toml:"role"`
	ParaID           uint32       `toml:"paraId"`
	TreasuryPalletID string       `toml:"treasuryPalletId"`
	Log              *Log         `toml:"log"`
	Store            *Store       `toml:"store"`
	Xcm              *XcmConfig   `toml:"xcm"`
	Relay            *RelayConfig `toml:"relay"`
	Metrics          *Metrics     `toml:"metrics"`
	Currency         []*Currency  `toml:"currency"`

	currencies map[string]*Currency
}

// Log 日志配置
type Log struct {
	// 日志级别，支持debug(dbug)/info/warn/error(eror)/crit
	Loglevel        string `toml:"loglevel"`
	LogConsoleLevel string `toml:"logConsoleLevel"`
	// 日志文件名，可带目录，所有生成的日志文件都放到此目录下
	LogFile string `toml:"logFile"`
	// 单个日志文件的最大值（单位：兆）
	MaxFileSize uint32 `toml:"maxFileSize"`
	// 最多保存的历史日志文件个数
	MaxBackups uint32 `toml:"maxBackups"`
	// 最多保存的历史日志消息（单位：天）
	MaxAge uint32 `toml:"maxAge"`
	// 日志文件名是否使用本地时间（否则使用UTC时间）
	LocalTime bool `toml:"localTime"`
	// 历史日志文件是否压缩（压缩格式为gz）
	Compress bool `toml:"compress"`
	// 是否打印调用源文件和行号
	CallerFile bool `toml:"callerFile"`
	// 是否打印调用方法
	CallerFunction bool `toml:"callerFunction"`
}

// Store 账本存储配置
type Store struct {
	// 数据库类型 memdb/leveldb/gobadgerdb
	Driver    string `toml:"driver"`
	DbPath    string `toml:"dbPath"`
	DbCache   int32  `toml:"dbCache"`
	CacheSize int    `toml:"cacheSize"`
}

// XcmConfig 消息执行配置
type XcmConfig struct {
	UnitWeight      Weight `toml:"unitWeight"`
	MaxInstructions int    `toml:"maxInstructions"`
	// 默认消息执行上限，0 表示不限
	MaxWeight Weight `toml:"maxWeight"`
	// WithdrawAsset 是否从来源主权账户扣款
	WithdrawFromOrigin bool `toml:"withdrawFromOrigin"`
	// 免费执行的来源
	UnpaidOrigins []string `toml:"unpaidOrigins"`
}

// RelayConfig 中继链 runtime 调用编码参数
type RelayConfig struct {
	BalancesPallet        uint8  `toml:"balancesPallet"`
	TransferKeepAliveCall uint8  `toml:"transferKeepAliveCall"`
	UtilityPallet         uint8  `toml:"utilityPallet"`
	AsDerivativeCall      uint8  `toml:"asDerivativeCall"`
	BatchCall             uint8  `toml:"batchCall"`
	ExistentialDeposit    uint64 `toml:"existentialDeposit"`
	TransferWeight        Weight `toml:"transferWeight"`
}

// Metrics 监控配置
type Metrics struct {
	Enable     bool   `toml:"enable"`
	ListenAddr string `toml:"listenAddr"`
}

// Currency 可结算资产
type Currency struct {
	Symbol             string `toml:"symbol"`
	Location           string `toml:"location"`
	ExistentialDeposit uint64 `toml:"existentialDeposit"`
	Decimals           int32  `toml:"decimals"`
	// 每秒执行权重的价格，0 表示不能用于支付手续费
	UnitsPerSecond uint64 `toml:"unitsPerSecond"`

	loc Location
}

// Loc parsed location of the currency.
func (c *Currency) Loc() Location {
	return c.loc
}

// IsRelay 是否为中继链
func (c *Config) IsRelay() bool {
	return c.Role == RoleRelay
}

// SelfLocation 本链在中继链视角下的位置
func (c *Config) SelfLocation() Location {
	if c.IsRelay() {
		return Here()
	}
	return ChildLocation(c.ParaID)
}

// CurrencyOf looks up the currency of an asset id.
func (c *Config) CurrencyOf(id Location) (*Currency, bool) {
	cur, ok := c.currencies[id.Key()]
	return cur, ok
}

// CurrencyBySymbol 按符号查找
func (c *Config) CurrencyBySymbol(symbol string) (*Currency, bool) {
	for _, cur := range c.Currency {
		if strings.EqualFold(cur.Symbol, symbol) {
			return cur, true
		}
	}
	return nil, false
}

// TreasuryPalletIDBytes 固定 8 字节
func (c *Config) TreasuryPalletIDBytes() [PalletIDLen]byte {
	var id [PalletIDLen]byte
	copy(id[:], c.TreasuryPalletID)
	return id
}

// Validate fills defaults and checks the configuration.
func (c *Config) Validate() error {
	switch c.Role {
	case RoleRelay:
	case RoleParachain, "":
		c.Role = RoleParachain
		if c.ParaID == 0 {
			return errors.Wrap(ErrConfig, "parachain needs paraId")
		}
	default:
		return errors.Wrapf(ErrConfig, "unknown role %s", c.Role)
	}
	if c.TreasuryPalletID == "" {
		c.TreasuryPalletID = DefaultTreasuryPalletID
	}
	if len(c.TreasuryPalletID) != PalletIDLen {
		return errors.Wrapf(ErrConfig, "treasuryPalletId must be %d bytes", PalletIDLen)
	}
	if c.Log == nil {
		c.Log = &Log{}
	}
	if c.Store == nil {
		c.Store = &Store{}
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "memdb"
	}
	if c.Xcm == nil {
		c.Xcm = &XcmConfig{}
	}
	if c.Xcm.UnitWeight == 0 {
		c.Xcm.UnitWeight = DefaultUnitWeight
	}
	if c.Xcm.MaxInstructions <= 0 {
		c.Xcm.MaxInstructions = DefaultMaxInstructions
	}
	if c.Xcm.MaxInstructions > MaxDecodeInstructions {
		return errors.Wrapf(ErrConfig, "maxInstructions %d over %d", c.Xcm.MaxInstructions, MaxDecodeInstructions)
	}
	for _, o := range c.Xcm.UnpaidOrigins {
		if _, err := ParseLocation(o); err != nil {
			return errors.Wrapf(ErrConfig, "unpaid origin %s: %v", o, err)
		}
	}
	if c.Relay == nil {
		c.Relay = &RelayConfig{}
	}
	if c.Metrics == nil {
		c.Metrics = &Metrics{}
	}
	if len(c.Currency) == 0 {
		return errors.Wrap(ErrConfig, "no currency")
	}
	c.currencies = make(map[string]*Currency, len(c.Currency))
	for _, cur := range c.Currency {
		loc, err := ParseLocation(cur.Location)
		if err != nil {
			return errors.Wrapf(ErrConfig, "currency %s: %v", cur.Symbol, err)
		}
		cur.loc = loc
		if _, ok := c.currencies[loc.Key()]; ok {
			return errors.Wrapf(ErrConfig, "duplicate currency location %s", loc)
		}
		if cur.ExistentialDeposit == 0 {
			return errors.Wrapf(ErrConfig, "currency %s needs existentialDeposit", cur.Symbol)
		}
		c.currencies[loc.Key()] = cur
	}
	return nil
}

// ParseConfig decodes and validates a TOML config.
func ParseConfig(cfgstring string) (*Config, error) {
	var cfg Config
	if _, err := tml.Decode(cfgstring, &cfg); err != nil {
		return nil, errors.Wrap(ErrConfig, err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// InitCfgString 解析配置，出错 panic
func InitCfgString(cfgstring string) *Config {
	cfg, err := ParseConfig(cfgstring)
	if err != nil {
		panic(err)
	}
	return cfg
}
