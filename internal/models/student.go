package models

// Student is the summary of a res.partner enrolled as student.
type Student struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Vat            string  `json:"vat"`
	Nationality    string  `json:"nationality"`
	Image          string  `json:"image_1920,omitempty"`
	IsActive       bool    `json:"is_active"`
	ParentIDs      []int64 `json:"parents_ids"`
	InscriptionIDs []int64 `json:"inscription_ids"`
}

// StudentPage is one server page of students plus the overall total.
type StudentPage struct {
	Students []Student `json:"students"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}

// StudentCounts holds the head counts shown above the student list.
type StudentCounts struct {
	Total  int `json:"total"`
	Active int `json:"active"`
}
