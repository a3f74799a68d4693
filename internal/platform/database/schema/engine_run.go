package schema

// EngineRunTable represents the 'engine.run' table
type EngineRunTable struct {
	Table      string
	ID         string
	Status     string
	StartedAt  string
	FinishedAt string
	Report     string
}

// EngineRun is the schema definition for engine.run
var EngineRun = EngineRunTable{
	Table:      "engine.run",
	ID:         "id",
	Status:     "status",
	StartedAt:  "startedat",
	FinishedAt: "finishedat",
	Report:     "report",
}

func (t EngineRunTable) Columns() []string {
	return []string{t.ID, t.Status, t.StartedAt, t.FinishedAt, t.Report}
}
