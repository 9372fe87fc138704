package teams

// renames maps historical team names to the name the team currently races
// under. Every input table must be normalized with the same table before
// merging, otherwise merge keys silently diverge across seasons.
var renames = map[string]string{
	"Racing Point":      "Aston Martin",
	"Alfa Romeo":        "Kick Sauber",
	"Alfa Romeo Racing": "Kick Sauber",
	"Sauber":            "Kick Sauber",
	"Alpha Tauri":       "RB",
	"AlphaTauri":        "RB",
	"Toro Rosso":        "RB",
	"Renault":           "Alpine",
}

// Normalize maps a historical team name to its current one. Unmapped names
// pass through unchanged, so normalizing an already-current name is a no-op.
func Normalize(name string) string {
	if current, ok := renames[name]; ok {
		return current
	}
	return name
}

// NormalizeAll returns the normalized form of every name in order.
func NormalizeAll(names []string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = Normalize(name)
	}
	return out
}
