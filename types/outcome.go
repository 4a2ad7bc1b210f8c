// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import "fmt"

// OutcomeKind 执行结果类型
type OutcomeKind uint8

const (
	// OutcomeComplete 全部指令执行成功
	OutcomeComplete OutcomeKind = iota
	// OutcomeIncomplete 部分执行
	OutcomeIncomplete
	// OutcomeError 未执行任何指令
	OutcomeError
)

// Outcome of executing one message.
type Outcome struct {
	Kind OutcomeKind
	Used Weight
	Err  error
}

// Complete outcome
func Complete(used Weight) Outcome {
	return Outcome{Kind: OutcomeComplete, Used: used}
}

// Incomplete outcome
func Incomplete(used Weight, err error) Outcome {
	return Outcome{Kind: OutcomeIncomplete, Used: used, Err: err}
}

// ErrorOutcome nothing executed
func ErrorOutcome(err error) Outcome {
	return Outcome{Kind: OutcomeError, Err: err}
}

// IsComplete 是否全部成功
func (o Outcome) IsComplete() bool {
	return o.Kind == OutcomeComplete
}

// EnsureComplete returns the error of a non complete outcome.
func (o Outcome) EnsureComplete() error {
	if o.Kind == OutcomeComplete {
		return nil
	}
	return o.Err
}

func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeComplete:
		return fmt.Sprintf("Complete(%d)", o.Used)
	case OutcomeIncomplete:
		return fmt.Sprintf("Incomplete(%d, %v)", o.Used, o.Err)
	case OutcomeError:
		return fmt.Sprintf("Error(%v)", o.Err)
	}
	return "Outcome(?)"
}
