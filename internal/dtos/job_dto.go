package dtos

type JobCreateRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Location    string `json:"location" binding:"required"`
	JobType     string `json:"job_type" binding:"required,oneof=full-time part-time contract internship"`
	CompanyID   uint   `json:"company_id" binding:"required"`

	// Optional fields
	Salary      string `json:"salary"`
	Experience  string `json:"experience"`
	Skills      string `json:"skills"`
	Status      string `json:"status" binding:"omitempty,oneof=active inactive draft"`
	ApplyLink   string `json:"apply_link"`
	Tags        string `json:"tags"`
	Country     string `json:"country"`
	IsFeatured  bool   `json:"is_featured"`
	Vacancy     int    `json:"vacancy"`
	CategoryIDs []uint `json:"category_ids"`
}

type JobUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	JobType     *string `json:"job_type" binding:"omitempty,oneof=full-time part-time contract internship"`
	Salary      *string `json:"salary"`
	Experience  *string `json:"experience"`
	Skills      *string `json:"skills"`
	Status      *string `json:"status" binding:"omitempty,oneof=active inactive draft"`
	ApplyLink   *string `json:"apply_link"`
	Tags        *string `json:"tags"`
	Country     *string `json:"country"`
	IsFeatured  *bool   `json:"is_featured"`
	Vacancy     *int    `json:"vacancy"`
	CategoryIDs *[]uint `json:"category_ids"`
}

// JobListQuery is bound from query parameters on GET /jobs.
type JobListQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=active inactive draft"`
	JobType  string `form:"job_type"`
	Location string `form:"location"`
	Category string `form:"category"` // category slug
	Search   string `form:"q"`
	Featured *bool  `form:"featured"`
	Page     int    `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
}

type PagedResponse struct {
	Items    any   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}
