package model

// Centralized icons for the UI components
// Using simple single-width characters for consistent terminal rendering
const (
	IconInFile   = "●" // Entry already present in the [dlc] section
	IconNew      = "+" // Discovered entry not yet in the file
	IconRemoved  = "✗" // Pending removal
	IconUnlocked = "◆" // unlockall = true
	IconLocked   = "◇" // unlockall = false or unset
)
