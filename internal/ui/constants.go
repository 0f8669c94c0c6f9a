package ui

// UI-wide constants to avoid magic numbers/strings scattered across the codebase.

// Icons (emojis/symbols)
const (
	IconSettings = "⚙"
	IconRocket   = "🚀"
)

// Window sizing
const (
	WindowWidth  float32 = 450
	WindowHeight float32 = 550
)

// Layout sizing
const (
	ProgressWidth float32 = 300
)
