package component

// GoalScript names the script that picks an agent's next destination when
// it is idle, arrives or cannot make progress.
type GoalScript struct {
	Path string

	// Cooldown counts ticks before the script may run again while idle.
	Cooldown int
	Interval int
}

var GoalScriptComponent = NewComponent[GoalScript]()
