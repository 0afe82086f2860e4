package dtos

type CategoryCreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

type CategoryUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type CompanyCreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Website     string `json:"website"`
	LogoURL     string `json:"logo_url"`
	Location    string `json:"location"`
}

type CompanyUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Website     *string `json:"website"`
	LogoURL     *string `json:"logo_url"`
	Location    *string `json:"location"`
}

type ApplicationCreateRequest struct {
	CoverLetter string `json:"cover_letter"`
	ResumeLink  string `json:"resume_link"`
}

type ApplicationStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending reviewing shortlisted rejected hired"`
}

// TestNotificationRequest drives the admin test-push endpoint. With no
// UserID the push goes to every user holding a token.
type TestNotificationRequest struct {
	UserID *uint `json:"user_id"`
}
