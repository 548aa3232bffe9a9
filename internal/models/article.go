package models

// SearchQuery is what the search form submits. Both fields may be empty.
type SearchQuery struct {
	Title    string `json:"title"`
	Keywords string `json:"keywords"`
}

// Article is a single search result as returned by the backend.
type Article struct {
	Title     string `json:"title"`
	Publisher string `json:"publisher"`
	Date      string `json:"date"`
	Link      string `json:"link"`
	Image     string `json:"image,omitempty"`
}

type SearchResponse struct {
	Articles    []Article `json:"articles"`
	CSVFilePath string    `json:"csv_file_path,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// AccountInfo is a partial update of the account settings. The backend
// overwrites every key that is present, so nil fields are left out.
type AccountInfo struct {
	FullName     *string `json:"fullName,omitempty"`
	Position     *string `json:"position,omitempty"`
	Company      *string `json:"company,omitempty"`
	Industry     *string `json:"industry,omitempty"`
	CompanyBrief *string `json:"companyBrief,omitempty"`
}

// Item is a stock item managed from the admin dashboard.
type Item struct {
	ID           string  `json:"item_id,omitempty"`
	Name         string  `json:"name"`
	SerialNumber string  `json:"serial_number"`
	Provider     string  `json:"provider"`
	Category     string  `json:"category"`
	Price        float64 `json:"price"`
}

type LoginResult struct {
	Success     bool   `json:"success"`
	RedirectURL string `json:"redirect_url"`
	Error       string `json:"error"`
}

// StatusMessage is the common {message, error} body most endpoints reply with.
type StatusMessage struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}
