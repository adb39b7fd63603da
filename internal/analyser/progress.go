package analyser

import "github.com/koustreak/dbanalyser/internal/logger"

// Stage is the message reported while an analysis runs. StageNone marks
// the end of a run.
type Stage string

const (
	StageNone          Stage = ""
	StageTables        Stage = "Loading tables"
	StageColumns       Stage = "Loading columns"
	StagePrimaryKeys   Stage = "Loading primary keys"
	StageForeignKeys   Stage = "Loading foreign keys"
	StageViews         Stage = "Loading views"
	StageProgrammables Stage = "Loading programmables"
	StageViewTexts     Stage = "Loading view texts"
	StageIndexes       Stage = "Loading indexes"
	StageUniques       Stage = "Loading uniques"
	StageFinalizing    Stage = "Finalizing DB structure"
)

// Progress observes analysis stages. Calls are synchronous notifications;
// implementations must not block.
type Progress interface {
	Analysing(stage Stage)
}

// ProgressFunc adapts a function to Progress.
type ProgressFunc func(Stage)

func (f ProgressFunc) Analysing(stage Stage) { f(stage) }

// NopProgress discards notifications.
type NopProgress struct{}

func (NopProgress) Analysing(Stage) {}

// LogProgress reports stages to a logger.
type LogProgress struct {
	Log *logger.Logger
}

func (p LogProgress) Analysing(stage Stage) {
	if stage == StageNone {
		p.Log.Info("analysis finished")
		return
	}
	p.Log.Info(string(stage))
}
