package classify

// DefaultLabels returns the class names of the pretrained grocery model,
// index-aligned with the classifier's score columns. Index 0 is the
// background class.
func DefaultLabels() []string {
	return []string{
		"__background__",
		"avocado",
		"orange",
		"butter",
		"champagne",
		"eggBox",
		"gerkin",
		"joghurt",
		"ketchup",
		"orangeJuice",
		"onion",
		"pepper",
		"tomato",
		"water",
		"milk",
		"tabasco",
		"mustard",
	}
}
