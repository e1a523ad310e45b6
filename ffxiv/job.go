package ffxiv

const (
	CategoryTank   = "tank"
	CategoryHealer = "healer"
	CategoryMelee  = "melee"
	CategoryRanged = "ranged"
	CategoryCaster = "caster"
)

var (
	// JobOrder is the display order of the jobs as FFLogs names them in damage tables.
	JobOrder = map[string]int{
		"Paladin":    11,
		"Warrior":    12,
		"DarkKnight": 13,
		"Gunbreaker": 14,

		"WhiteMage":   20,
		"Scholar":     21,
		"Astrologian": 22,
		"Sage":        23,

		"Monk":    31,
		"Dragoon": 32,
		"Ninja":   33,
		"Samurai": 34,
		"Reaper":  35,
		"Viper":   36,

		"Bard":      40,
		"Machinist": 41,
		"Dancer":    42,

		"BlackMage":   50,
		"Summoner":    51,
		"RedMage":     52,
		"Pictomancer": 53,
	}
)

// Category returns the party role of a job, or "" for anything that is not a job
// (pets, limit break, environment).
func Category(job string) string {
	order, ok := JobOrder[job]
	if !ok {
		return ""
	}

	switch order / 10 {
	case 1:
		return CategoryTank
	case 2:
		return CategoryHealer
	case 3:
		return CategoryMelee
	case 4:
		return CategoryRanged
	case 5:
		return CategoryCaster
	}
	return ""
}

// Order returns the display order of a job. Unknown jobs sort last.
func Order(job string) int {
	if order, ok := JobOrder[job]; ok {
		return order
	}
	return 100
}
