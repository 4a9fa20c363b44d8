package config

// CategoryWeights orders command categories in the help listing. Lower
// weights come first.
var CategoryWeights = map[string]int{
	"🎵 Music":        0,
	"⚙️ Settings":    10,
	"🕯️ Information": 20,
}
