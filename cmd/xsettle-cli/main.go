// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/33cn/xsettle/cmd/xsettle-cli/commands"
	"github.com/33cn/xsettle/common/log"
)

func main() {
	log.SetLogLevel("error")
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
