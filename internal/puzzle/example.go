package puzzle

// exampleGroups is a solved puzzle shown to players as a worked example.
var exampleGroups = []Group{
	{Label: "Shades of red", Members: []Word{"BRICK", "CHERRY", "ROSE", "RUBY"}, Level: 0},
	{Label: "A little bit of a beverage", Members: []Word{"DROP", "SPLASH", "SPOT", "SPRINKLE"}, Level: 1},
	{Label: "___ Bath", Members: []Word{"BIRD", "BUBBLE", "MUD", "SPONGE"}, Level: 2},
	{Label: "Choicest", Members: []Word{"BEST", "CREAM", "PICK", "TOP"}, Level: 3},
}

// Example returns the worked example puzzle.
func Example() *Puzzle {
	p, err := New(exampleGroups)
	if err != nil {
		panic(err)
	}
	return p
}
