package model

// Candidate is a DLC offered by the store catalog.
type Candidate struct {
	AppID       string `json:"appid"`                  // Store application id
	Name        string `json:"name"`                   // Display name
	Type        string `json:"type,omitempty"`         // Store app type, "dlc" for kept results
	ReleaseDate string `json:"release_date,omitempty"` // Human readable release date
	Price       string `json:"price,omitempty"`        // Formatted final price, e.g. "$4.99"
}

// Entry is one id = name line of the [dlc] section.
type Entry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Config is what the front ends show for a loaded file.
type Config struct {
	Path      string            `json:"path"`
	AppID     string            `json:"appid"`
	UnlockAll bool              `json:"unlockall"`
	Steam     map[string]string `json:"steam"`
	Entries   []Entry           `json:"entries"`
}
