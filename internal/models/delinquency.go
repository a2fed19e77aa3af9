package models

import "fmt"

// DelinquencyStage is the named, ordered recoding of a Ciclo_Atraso code
type DelinquencyStage string

const (
	StageNoActivity DelinquencyStage = "sin_actividad"
	StageCurrent    DelinquencyStage = "al_dia"           // 0 days
	StageAcceptable DelinquencyStage = "atraso_aceptable" // 1-30 days
	StageMedium     DelinquencyStage = "medio_atraso"     // 31-60 days
	StageHigh1      DelinquencyStage = "alto_atraso_1"    // 61-90 days
	StageHigh2      DelinquencyStage = "alto_atraso_2"    // 91-120 days
	StageCritical1  DelinquencyStage = "critico_atraso_1" // 121-150 days
	StageCritical2  DelinquencyStage = "critico_atraso_2" // 151-180 days
	StageExtreme1   DelinquencyStage = "extremo_atraso_1" // 181-210 days
	StageExtreme2   DelinquencyStage = "extremo_atraso_2" // more than 210 days
)

const stageUnknownRank = -1

// delinquencyStages is indexed by cycle code; the index is also the rank.
var delinquencyStages = [...]DelinquencyStage{
	StageNoActivity,
	StageCurrent,
	StageAcceptable,
	StageMedium,
	StageHigh1,
	StageHigh2,
	StageCritical1,
	StageCritical2,
	StageExtreme1,
	StageExtreme2,
}

var delinquencyRanks = func() map[DelinquencyStage]int {
	ranks := make(map[DelinquencyStage]int, len(delinquencyStages))
	for i, stage := range delinquencyStages {
		ranks[stage] = i
	}
	return ranks
}()

// DelinquencyStages returns every stage from best to worst
func DelinquencyStages() []DelinquencyStage {
	out := make([]DelinquencyStage, len(delinquencyStages))
	copy(out, delinquencyStages[:])
	return out
}

// StageForCode recodes a delinquency cycle code (0-9)
func StageForCode(code int) (DelinquencyStage, error) {
	if code < 0 || code >= len(delinquencyStages) {
		return "", fmt.Errorf("delinquency cycle code %d outside 0-%d", code, len(delinquencyStages)-1)
	}
	return delinquencyStages[code], nil
}

// Rank returns the ordinal position of the stage, or -1 for an unknown stage
func (s DelinquencyStage) Rank() int {
	if rank, ok := delinquencyRanks[s]; ok {
		return rank
	}
	return stageUnknownRank
}

// IsValid checks if the stage is one of the ten enumerated stages
func (s DelinquencyStage) IsValid() bool {
	return s.Rank() != stageUnknownRank
}

// String returns the string representation of DelinquencyStage
func (s DelinquencyStage) String() string {
	return string(s)
}

// WorstStage returns the highest-ranked stage of the given stages.
// It returns false when no valid stage is present.
func WorstStage(stages ...DelinquencyStage) (DelinquencyStage, bool) {
	worst := DelinquencyStage("")
	worstRank := stageUnknownRank
	for _, stage := range stages {
		if rank := stage.Rank(); rank > worstRank {
			worst, worstRank = stage, rank
		}
	}
	return worst, worstRank != stageUnknownRank
}
