package aliases

// builtinAliases is keyed by normalized shorthand.
var builtinAliases = map[string]string{
	"jjk":                      "Jujutsu Kaisen",
	"aot":                      "Attack on Titan",
	"snk":                      "Attack on Titan",
	"shingeki":                 "Attack on Titan",
	"opm":                      "One Punch Man",
	"mha":                      "My Hero Academia",
	"bnha":                     "My Hero Academia",
	"fmab":                     "Fullmetal Alchemist: Brotherhood",
	"fma":                      "Fullmetal Alchemist",
	"hxh":                      "Hunter x Hunter",
	"jojo":                     "JoJo's Bizarre Adventure",
	"jjba":                     "JoJo's Bizarre Adventure",
	"kny":                      "Demon Slayer: Kimetsu no Yaiba",
	"demon slayer":             "Demon Slayer: Kimetsu no Yaiba",
	"csm":                      "Chainsaw Man",
	"sao":                      "Sword Art Online",
	"dbz":                      "Dragon Ball Z",
	"dbs":                      "Dragon Ball Super",
	"op":                       "One Piece",
	"nge":                      "Neon Genesis Evangelion",
	"eva":                      "Neon Genesis Evangelion",
	"evangelion":               "Neon Genesis Evangelion",
	"ttgl":                     "Tengen Toppa Gurren Lagann",
	"gurren lagann":            "Tengen Toppa Gurren Lagann",
	"re zero":                  "Re:Zero - Starting Life in Another World",
	"rezero":                   "Re:Zero - Starting Life in Another World",
	"konosuba":                 "KonoSuba: God's Blessing on This Wonderful World!",
	"tensura":                  "That Time I Got Reincarnated as a Slime",
	"slime isekai":             "That Time I Got Reincarnated as a Slime",
	"danmachi":                 "Is It Wrong to Try to Pick Up Girls in a Dungeon?",
	"oregairu":                 "My Teen Romantic Comedy SNAFU",
	"toradora":                 "Toradora!",
	"kaguya sama":              "Kaguya-sama: Love is War",
	"spy family":               "Spy x Family",
	"sxf":                      "Spy x Family",
	"mob":                      "Mob Psycho 100",
	"mp100":                    "Mob Psycho 100",
	"tpn":                      "The Promised Neverland",
	"yakusoku no neverland":    "The Promised Neverland",
	"steins gate":              "Steins;Gate",
	"cowboy bebop":             "Cowboy Bebop",
	"code geass":               "Code Geass: Lelouch of the Rebellion",
	"haikyu":                   "Haikyu!!",
	"frieren":                  "Frieren: Beyond Journey's End",
	"sousou no frieren":        "Frieren: Beyond Journey's End",
	"bocchi":                   "Bocchi the Rock!",
	"oshi no ko":               "Oshi no Ko",
	"dr stone":                 "Dr. Stone",
	"vinland":                  "Vinland Saga",
	"bleach tybw":              "Bleach: Thousand-Year Blood War",
	"tybw":                     "Bleach: Thousand-Year Blood War",
	"tokyo ghoul re":           "Tokyo Ghoul:re",
	"madoka":                   "Puella Magi Madoka Magica",
	"pmmm":                     "Puella Magi Madoka Magica",
	"kimi no na wa":            "Your Name.",
	"your name":                "Your Name.",
	"violet evergarden":        "Violet Evergarden",
	"made in abyss":            "Made in Abyss",
	"mia":                      "Made in Abyss",
	"nisekoi":                  "Nisekoi: False Love",
	"the apothecary diaries":   "The Apothecary Diaries",
	"kusuriya no hitorigoto":   "The Apothecary Diaries",
	"solo leveling":            "Solo Leveling",
	"ore dake level up na ken": "Solo Leveling",
	"mushoku":                  "Mushoku Tensei: Jobless Reincarnation",
	"mushoku tensei":           "Mushoku Tensei: Jobless Reincarnation",
	"86":                       "86 EIGHTY-SIX",
	"gintama":                  "Gintama",
	"nichijou":                 "Nichijou: My Ordinary Life",
	"yuru camp":                "Laid-Back Camp",
	"laid back camp":           "Laid-Back Camp",
	"mononoke":                 "Mononoke",
	"lain":                     "Serial Experiments Lain",
	"gto":                      "Great Teacher Onizuka",
	"psycho pass":              "Psycho-Pass",
	"dungeon meshi":            "Delicious in Dungeon",
	"chainsaw":                 "Chainsaw Man",
	"aot final season":         "Attack on Titan Final Season",
	"one punch":                "One Punch Man",
	"black clover":             "Black Clover",
	"fire force":               "Fire Force",
	"enen no shouboutai":       "Fire Force",
	"boku no hero academia":    "My Hero Academia",
	"kimetsu no yaiba":         "Demon Slayer: Kimetsu no Yaiba",
	"shingeki no kyojin":       "Attack on Titan",
	"hagaren":                  "Fullmetal Alchemist",
	"hunter hunter":            "Hunter x Hunter",
	"dragon ball kai":          "Dragon Ball Z Kai",
	"naruto shippuden":         "Naruto: Shippuden",
	"shippuden":                "Naruto: Shippuden",
	"boruto":                   "Boruto: Naruto Next Generations",
}

// Builtin returns a copy of the builtin alias table keyed by normalized
// shorthand.
func Builtin() map[string]string {
	out := make(map[string]string, len(builtinAliases))
	for key, value := range builtinAliases {
		out[key] = value
	}
	return out
}

func lookupBuiltin(normalized string) (string, bool) {
	canonical, ok := builtinAliases[normalized]
	return canonical, ok
}
