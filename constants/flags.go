package constants

type FeatureFlag string

const (
	FlagGameMode    FeatureFlag = "game_mode"
	FlagARScan      FeatureFlag = "ar_scan"
	FlagPremiumPass FeatureFlag = "premium_pass"
)

var AllFeatureFlags = []FeatureFlag{FlagGameMode, FlagARScan, FlagPremiumPass}

// KV key prefixes.
const (
	KeyFeatureFlags = "featureFlags"
	KeyXPPrefix     = "gamification:xp:"
)
