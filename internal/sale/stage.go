package sale

import (
	"fmt"
	"strings"
)

// Stage is one phase of the sale lifecycle. Values are ordered: the
// auto-advance path only ever moves forward.
type Stage int

const (
	StageNotStarted Stage = iota
	StagePreLaunch
	StagePrivate
	StagePublic
	StageEnded
)

func (s Stage) String() string {
	switch s {
	case StageNotStarted:
		return "not_started"
	case StagePreLaunch:
		return "pre_launch"
	case StagePrivate:
		return "private"
	case StagePublic:
		return "public"
	case StageEnded:
		return "ended"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

func ParseStage(v string) (Stage, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "not_started":
		return StageNotStarted, nil
	case "pre_launch":
		return StagePreLaunch, nil
	case "private":
		return StagePrivate, nil
	case "public":
		return StagePublic, nil
	case "ended":
		return StageEnded, nil
	default:
		return StageNotStarted, fmt.Errorf("unknown stage %q", v)
	}
}

// Active reports whether purchases and price updates are permitted.
func (s Stage) Active() bool {
	return s == StagePrivate || s == StagePublic
}

// stageForTime recomputes the stage purely from wall-clock time using the
// configured boundaries. Used by the idempotent refresh path.
func stageForTime(now, presaleStart, privateDuration, publicDuration int64) Stage {
	switch {
	case now < presaleStart:
		return StagePreLaunch
	case now < presaleStart+privateDuration:
		return StagePrivate
	case now < presaleStart+privateDuration+publicDuration:
		return StagePublic
	default:
		return StageEnded
	}
}

// priceForStage returns the price bound to the given stage, or 0 when the
// stage carries no price.
func priceForStage(s Stage, privatePrice, publicPrice int64) int64 {
	switch s {
	case StagePrivate:
		return privatePrice
	case StagePublic:
		return publicPrice
	default:
		return 0
	}
}
