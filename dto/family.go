package dto

import "time"

type CreateFamilyRequest struct {
	Name string `json:"name" validate:"required,min=1,max=80" example:"The Nguyens"`
}

func (r CreateFamilyRequest) Validate() error {
	return GetValidator().Struct(r)
}

type JoinFamilyRequest struct {
	InviteCode string `json:"invite_code" validate:"required,len=8" example:"A1B2C3D4"`
}

func (r JoinFamilyRequest) Validate() error {
	return GetValidator().Struct(r)
}

type FamilyResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	InviteCode string    `json:"invite_code,omitempty"` // only shown to parents
	OwnerID    string    `json:"owner_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type FamilyMemberResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Role        string `json:"role"`
	HonorPoints int    `json:"honor_points"`
	Level       int    `json:"level"`
	TotalXP     int    `json:"total_xp"`
}

type FamilyDetailResponse struct {
	Family  FamilyResponse         `json:"family"`
	Members []FamilyMemberResponse `json:"members"`
}
