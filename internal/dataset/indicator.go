package dataset

import (
	"fmt"
	"strings"
)

// Indicator names one socioeconomic measure.
type Indicator string

const (
	Hunger     Indicator = "hunger"
	Peace      Indicator = "peace"
	Marriage   Indicator = "marriage"
	Happiness  Indicator = "happiness"
	Freedom    Indicator = "freedom"
	Innovation Indicator = "innovation"
)

// Indicators lists every known indicator in level order.
var Indicators = []Indicator{Hunger, Peace, Marriage, Happiness, Freedom, Innovation}

// Level is a tier of the needs hierarchy.
type Level int

const (
	Physiological Level = iota + 1
	Safety
	Belonging
	Esteem
	SelfActualization
)

func (l Level) String() string {
	switch l {
	case Physiological:
		return "physiological"
	case Safety:
		return "safety"
	case Belonging:
		return "belonging"
	case Esteem:
		return "esteem"
	case SelfActualization:
		return "self-actualization"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

type indicatorInfo struct {
	level  Level
	column string
	title  string
}

var indicatorTable = map[Indicator]indicatorInfo{
	Hunger:     {Physiological, "undernourishment_rate", "Undernourishment rate"},
	Peace:      {Safety, "peace_index", "Global Peace Index"},
	Marriage:   {Belonging, "marriage_rate", "Marriage rate"},
	Happiness:  {Belonging, "happiness_score", "Happiness score"},
	Freedom:    {Esteem, "hf_score", "Human freedom score"},
	Innovation: {SelfActualization, "innovation_score", "Innovation score"},
}

// ParseIndicator accepts an indicator name, case-insensitively.
func ParseIndicator(s string) (Indicator, error) {
	ind := Indicator(strings.ToLower(strings.TrimSpace(s)))
	if !ind.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownIndicator, s)
	}
	return ind, nil
}

// Valid reports whether ind is a known indicator.
func (ind Indicator) Valid() bool {
	_, ok := indicatorTable[ind]
	return ok
}

// Level returns the tier ind measures, or 0 when unknown.
func (ind Indicator) Level() Level { return indicatorTable[ind].level }

// Column is the value column name every year table of this indicator carries.
func (ind Indicator) Column() string { return indicatorTable[ind].column }

// Title is a human-readable axis label.
func (ind Indicator) Title() string {
	if t := indicatorTable[ind].title; t != "" {
		return t
	}
	return string(ind)
}
