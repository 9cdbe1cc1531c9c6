package model

// Category is an award category with its ordered nominee list. The
// nominee id exposed to clients is always 1 + the name's index in
// Nominees, evaluated against the current list at cast time.
type Category struct {
	Number   int      `json:"number"`
	Title    string   `json:"title"`
	Nominees []string `json:"nominees"`
}

// Registrant is one row of the event-registration allow-list that signup
// requests are matched against.
type Registrant struct {
	ID        uint64 `json:"id"`
	Fullname  string `json:"fullname"`
	Birthdate string `json:"birthdate"`
	Phone     string `json:"phone,omitempty"`
}
