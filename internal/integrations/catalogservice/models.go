package catalogservice

// Package пакет услуг из каталога
type Package struct {
	ID          int64    `json:"id"`
	EventID     int64    `json:"eventId"`
	ServiceID   int64    `json:"serviceId"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Currency    string   `json:"currency"`
	Features    []string `json:"features"`
	Active      bool     `json:"active"`
}
