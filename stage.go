package depot

// Stage is a phase of a tick. Stages run in declaration order.
type Stage int

const (
	// PreUpdate runs first: input, spawning requested by the previous tick.
	PreUpdate Stage = iota

	// Perception builds what agents can observe.
	Perception

	// Simulation runs game rules and state updates.
	Simulation

	// Decision turns observations into intents.
	Decision

	// Physics applies forces and resolves contacts.
	Physics

	// PostUpdate runs cleanup and event rotation.
	PostUpdate

	// Presentation feeds rendering, audio and UI.
	Presentation

	stageCount
)

// Stages lists every stage in execution order.
func Stages() []Stage {
	stages := make([]Stage, stageCount)
	for i := range stages {
		stages[i] = Stage(i)
	}
	return stages
}

func (s Stage) Valid() bool {
	return s >= PreUpdate && s < stageCount
}

func (s Stage) String() string {
	switch s {
	case PreUpdate:
		return "PreUpdate"
	case Perception:
		return "Perception"
	case Simulation:
		return "Simulation"
	case Decision:
		return "Decision"
	case Physics:
		return "Physics"
	case PostUpdate:
		return "PostUpdate"
	case Presentation:
		return "Presentation"
	default:
		return "Unknown"
	}
}
