// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

var cfgstring = `
Title="pioneer"
role="parachain"
paraId=2000
treasuryPalletId="bit/trsy"

[log]
# 日志级别，支持debug(dbug)/info/warn/error(eror)/crit
loglevel = "debug"
logConsoleLevel = "info"
# 日志文件名，可带目录，所有生成的日志文件都放到此目录下
logFile = "logs/xsettle.log"
# 单个日志文件的最大值（单位：兆）
maxFileSize = 300
# 最多保存的历史日志文件个数
maxBackups = 100
# 最多保存的历史日志消息（单位：天）
maxAge = 28
# 日志文件名是否使用本地事件（否则使用UTC时间）
localTime = true
# 历史日志文件是否压缩（压缩格式为gz）
compress = true
# 是否打印调用源文件和行号
callerFile = false
# 是否打印调用方法
callerFunction = false

[store]
# 数据库类型 memdb/leveldb/gobadgerdb
driver="memdb"
dbPath="datadir"
dbCache=64
cacheSize=1024

[xcm]
# 每条指令的固定权重
unitWeight=200000000
maxInstructions=100
maxWeight=0
withdrawFromOrigin=false
unpaidOrigins=[]

[relay]
balancesPallet=4
transferKeepAliveCall=3
utilityPallet=24
asDerivativeCall=1
batchCall=0
existentialDeposit=33333333
transferWeight=8000000000

[metrics]
enable=false
listenAddr="localhost:9616"

[[currency]]
symbol="KSM"
location=".."
existentialDeposit=100000000
decimals=12
unitsPerSecond=160000000000

[[currency]]
symbol="NEER"
location="GeneralKey(0x0000)"
existentialDeposit=1000000000000
decimals=18
unitsPerSecond=800000000000

[[currency]]
symbol="BNC"
location="../Parachain(2001)/GeneralKey(0x0001)"
existentialDeposit=10000000000
decimals=12
unitsPerSecond=12800000000000
`

var relayCfgString = `
Title="kusama"
role="relay"
treasuryPalletId="py/trsry"

[log]
loglevel = "debug"
logConsoleLevel = "info"
logFile = ""

[store]
driver="memdb"

[xcm]
unitWeight=1000000000
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
location="Here"
existentialDeposit=33333333
decimals=12
unitsPerSecond=26666665000
`

// GetDefaultCfgstring 平行链默认配置
func GetDefaultCfgstring() string {
	return cfgstring
}

// GetRelayCfgstring 中继链默认配置
func GetRelayCfgstring() string {
	return relayCfgString
}
