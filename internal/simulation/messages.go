package simulation

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/flocking"
)

// The WorldActor speaks protobuf well-known types:
//
//	*durationpb.Duration  run one tick of that length
//	*structpb.Struct      partial flocking config update, keys as in the config file
//	*wrapperspb.BoolValue pause (true) or resume (false)
//	*emptypb.Empty        ask for the latest stats, answered with a *structpb.Struct

// ErrBadUpdate is returned when a config update carries an unknown key or a
// value of the wrong kind.
var ErrBadUpdate = errors.New("bad config update")

// TickMessage asks the world to advance by dt.
func TickMessage(dt time.Duration) *durationpb.Duration {
	return durationpb.New(dt)
}

// PauseMessage pauses or resumes ticking.
func PauseMessage(paused bool) *wrapperspb.BoolValue {
	return wrapperspb.Bool(paused)
}

// StatsRequest asks the world for its latest stats.
func StatsRequest() *emptypb.Empty {
	return &emptypb.Empty{}
}

// ConfigToStruct encodes every field of c.
func ConfigToStruct(c flocking.Config) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"separationWeight": structpb.NewNumberValue(c.SeparationWeight),
		"alignmentWeight":  structpb.NewNumberValue(c.AlignmentWeight),
		"cohesionWeight":   structpb.NewNumberValue(c.CohesionWeight),
		"speed":            structpb.NewNumberValue(c.Speed),
		"smoothing":        structpb.NewStringValue(string(c.Smoothing)),
		"turnSmoothing":    structpb.NewNumberValue(c.TurnSmoothing),
		"turnRate":         structpb.NewNumberValue(c.TurnRate),
		"cellSize":         structpb.NewNumberValue(c.CellSize),
		"viewRadius":       structpb.NewNumberValue(c.ViewRadius),
	}}
}

// ApplyStruct overwrites the fields of c present in s. Nothing is written
// when s holds an unknown key or a mistyped value.
func ApplyStruct(c *flocking.Config, s *structpb.Struct) error {
	next := *c
	for key, v := range s.GetFields() {
		if key == "smoothing" {
			str, ok := v.GetKind().(*structpb.Value_StringValue)
			if !ok {
				return fmt.Errorf("%w: %s must be a string", ErrBadUpdate, key)
			}
			next.Smoothing = flocking.SmoothingMode(str.StringValue)
			continue
		}
		field := numericField(&next, key)
		if field == nil {
			return fmt.Errorf("%w: unknown key %q", ErrBadUpdate, key)
		}
		num, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return fmt.Errorf("%w: %s must be a number", ErrBadUpdate, key)
		}
		*field = num.NumberValue
	}
	*c = next
	return nil
}

func numericField(c *flocking.Config, key string) *float64 {
	switch key {
	case "separationWeight":
		return &c.SeparationWeight
	case "alignmentWeight":
		return &c.AlignmentWeight
	case "cohesionWeight":
		return &c.CohesionWeight
	case "speed":
		return &c.Speed
	case "turnSmoothing":
		return &c.TurnSmoothing
	case "turnRate":
		return &c.TurnRate
	case "cellSize":
		return &c.CellSize
	case "viewRadius":
		return &c.ViewRadius
	}
	return nil
}

// StatsToStruct encodes st for an Ask reply.
func StatsToStruct(st flocking.Stats) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"tick":          structpb.NewNumberValue(float64(st.Tick)),
		"population":    structpb.NewNumberValue(float64(st.Population)),
		"indexed":       structpb.NewNumberValue(float64(st.Indexed)),
		"occupiedCells": structpb.NewNumberValue(float64(st.OccupiedCells)),
		"meanNeighbors": structpb.NewNumberValue(st.MeanNeighbors),
		"polarization":  structpb.NewNumberValue(st.Polarization),
	}}
}

// StatsFromStruct decodes a reply built by StatsToStruct.
func StatsFromStruct(s *structpb.Struct) flocking.Stats {
	f := s.GetFields()
	return flocking.Stats{
		Tick:          uint64(f["tick"].GetNumberValue()),
		Population:    int(f["population"].GetNumberValue()),
		Indexed:       int(f["indexed"].GetNumberValue()),
		OccupiedCells: int(f["occupiedCells"].GetNumberValue()),
		MeanNeighbors: f["meanNeighbors"].GetNumberValue(),
		Polarization:  f["polarization"].GetNumberValue(),
	}
}
