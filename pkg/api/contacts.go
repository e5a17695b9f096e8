package api

// ContactRequest тело запроса на создание или обновление контакта
type ContactRequest struct {
	AdditionalInformation *string `json:"additional_information,omitempty"`
	FirstName             string  `json:"first_name"`
	LastName              string  `json:"last_name"`
	Email                 string  `json:"email"`
	ContactNumber         string  `json:"contact_number"`
	Birthday              string  `json:"birthday"` // YYYY-MM-DD
}

// Contact представляет контакт в ответах API
type Contact struct {
	AdditionalInformation *string `json:"additional_information"`
	FirstName             string  `json:"first_name"`
	LastName              string  `json:"last_name"`
	Email                 string  `json:"email"`
	ContactNumber         string  `json:"contact_number"`
	Birthday              string  `json:"birthday"` // YYYY-MM-DD
	UserID                string  `json:"user_id"`
	ID                    int64   `json:"id"`
}

// UploadResponse ответ на загрузку файла
type UploadResponse struct {
	FilePath string `json:"file_path"`
}

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
