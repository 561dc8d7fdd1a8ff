package networks

import (
	"errors"
	"fmt"
)

var ErrUnknownTarget = errors.New("unknown target")

// Target is one of the contracts a network may have deployed
type Target uint8

const (
	TargetDealLedger Target = iota
	TargetFuturesRegistry
	TargetBatchMinter

	targetCount
)

var targetNames = [targetCount]string{
	TargetDealLedger:      "otc",
	TargetFuturesRegistry: "nft",
	TargetBatchMinter:     "batch",
}

func (t Target) String() string {
	if t >= targetCount {
		return fmt.Sprintf("target(%d)", uint8(t))
	}
	return targetNames[t]
}

func (t Target) Valid() bool {
	return t < targetCount
}

// Targets lists every target in declaration order
func Targets() []Target {
	out := make([]Target, 0, targetCount)
	for t := Target(0); t < targetCount; t++ {
		out = append(out, t)
	}
	return out
}

func ParseTarget(s string) (Target, error) {
	for t, name := range targetNames {
		if name == s {
			return Target(t), nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownTarget, s)
}
