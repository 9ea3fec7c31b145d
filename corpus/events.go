package corpus

import (
	"sort"
	"strconv"
	"strings"
)

// EventCode is the numeric code the logger assigns to an interaction event.
// The integer part groups related events (look, turn, move, ...); negative
// codes are UI events that carry no predictive signal.
type EventCode float64

// Events maps logged event names to their codes.
var Events = map[string]EventCode{
	"SessionStarted": 0.0,
	"Task1Started":   0.1,
	"Task1Ended":     0.2,
	"Task2Started":   0.3,
	"Task2Ended":     0.4,
	"Task3Started":   0.5,
	"Task3Ended":     0.6,
	"Task4Started":   0.7,
	"Task4Ended":     0.8,
	"LookUp":         1.0,
	"LookRight":      1.1,
	"LookDown":       1.2,
	"LookLeft":       1.3,
	"TurnRight":      2.0,
	"TurnLeft":       2.1,
	"MoveForward":    3.0,
	"MoveBackward":   3.1,
	"LiftUp":         4.0,
	"LiftDown":       4.1,
	"ArmRetract":     5.0,
	"ArmExtend":      5.1,
	"WristIn":        6.0,
	"WristOut":       6.1,
	"GripperClose":   7.0,
	"GripperOpen":    7.1,
	"ModeChange":     -1.0,
	"SetCameraView":  -1.1,
	"SpeedChange":    -1.2,
}

// NoiseEvent is the event stripped from every modeled sequence.
const NoiseEvent = "ModeChange"

// Key formats the code the way the character mapping file spells its keys:
// shortest decimal form, always with a fractional part ("-1.0", "0.1").
func (c EventCode) Key() string {
	s := strconv.FormatFloat(float64(c), 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// EventNames returns the known event names sorted by code.
func EventNames() []string {
	names := make([]string, 0, len(Events))
	for name := range Events {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ci, cj := Events[names[i]], Events[names[j]]
		if ci != cj {
			return ci < cj
		}
		return names[i] < names[j]
	})
	return names
}
