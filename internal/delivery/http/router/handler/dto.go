package handler

import (
	"time"

	"smartextract/internal/domain/entity"

	"github.com/google/uuid"
)

// Response DTOs keep the wire format independent of the domain entities and
// make sure sensitive fields (password hashes) can never leak into a payload.

type UserResponse struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Username  string     `json:"username"`
	FullName  string     `json:"full_name,omitempty"`
	IsActive  bool       `json:"is_active"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func toUserResponse(user *entity.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		FullName:  user.FullName,
		IsActive:  user.IsActive,
		LastLogin: user.LastLogin,
		CreatedAt: user.CreatedAt,
	}
}

func toUserResponses(users []*entity.User) []*UserResponse {
	out := make([]*UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, toUserResponse(user))
	}

	return out
}

type DocumentResponse struct {
	ID           uuid.UUID `json:"id"`
	Filename     string    `json:"filename"`
	FileType     string    `json:"file_type"`
	FileSize     int64     `json:"file_size"`
	MimeType     string    `json:"mime_type,omitempty"`
	Status       string    `json:"status"`
	DocumentType string    `json:"document_type"`
	CreatedAt    time.Time `json:"created_at"`
}

func toDocumentResponse(doc *entity.Document) *DocumentResponse {
	return &DocumentResponse{
		ID:           doc.ID,
		Filename:     doc.Filename,
		FileType:     doc.FileType,
		FileSize:     doc.FileSize,
		MimeType:     doc.MimeType,
		Status:       string(doc.Status),
		DocumentType: string(doc.DocumentType),
		CreatedAt:    doc.CreatedAt,
	}
}

func toDocumentResponses(docs []*entity.Document) []*DocumentResponse {
	out := make([]*DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toDocumentResponse(doc))
	}

	return out
}

type JobResponse struct {
	ID           uuid.UUID `json:"id"`
	Status       string    `json:"status"`
	Progress     float64   `json:"progress"`
	ErrorMessage string    `json:"error_message,omitempty"`
	DocumentID   uuid.UUID `json:"document_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toJobResponse(job *entity.ExtractionJob) *JobResponse {
	return &JobResponse{
		ID:           job.ID,
		Status:       string(job.Status),
		Progress:     job.Progress,
		ErrorMessage: job.ErrorMessage,
		DocumentID:   job.DocumentID,
		CreatedAt:    job.CreatedAt,
		UpdatedAt:    job.UpdatedAt,
	}
}

func toJobResponses(jobs []*entity.ExtractionJob) []*JobResponse {
	out := make([]*JobResponse, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, toJobResponse(job))
	}

	return out
}

type ExtractedDataResponse struct {
	FieldName        string   `json:"field_name"`
	FieldType        string   `json:"field_type"`
	Value            string   `json:"value"`
	Confidence       float64  `json:"confidence"`
	IsValid          bool     `json:"is_valid"`
	ValidationErrors []string `json:"validation_errors,omitempty"`
}

func toExtractedDataResponses(rows []*entity.ExtractedData) []*ExtractedDataResponse {
	out := make([]*ExtractedDataResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, &ExtractedDataResponse{
			FieldName:        row.FieldName,
			FieldType:        row.FieldType,
			Value:            row.Value,
			Confidence:       row.Confidence,
			IsValid:          row.IsValid,
			ValidationErrors: row.ValidationErrors,
		})
	}

	return out
}

type TemplateResponse struct {
	ID           uuid.UUID              `json:"id"`
	Name         string                 `json:"name"`
	Description  string                 `json:"description,omitempty"`
	DocumentType string                 `json:"document_type"`
	Fields       []entity.TemplateField `json:"fields"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

func toTemplateResponse(tpl *entity.Template) *TemplateResponse {
	fields := tpl.Fields
	if fields == nil {
		fields = []entity.TemplateField{}
	}

	return &TemplateResponse{
		ID:           tpl.ID,
		Name:         tpl.Name,
		Description:  tpl.Description,
		DocumentType: string(tpl.DocumentType),
		Fields:       fields,
		CreatedAt:    tpl.CreatedAt,
		UpdatedAt:    tpl.UpdatedAt,
	}
}

func toTemplateResponses(tpls []*entity.Template) []*TemplateResponse {
	out := make([]*TemplateResponse, 0, len(tpls))
	for _, tpl := range tpls {
		out = append(out, toTemplateResponse(tpl))
	}

	return out
}
