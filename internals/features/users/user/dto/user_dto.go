package dto

import (
	userModel "classku_backend/internals/features/users/user/model"
)

type UserResponse struct {
	ID        string  `json:"id"`
	UserName  string  `json:"user_name"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Bio       *string `json:"bio,omitempty"`
}

func FromModel(m *userModel.UserModel) UserResponse {
	return UserResponse{
		ID:        m.ID.String(),
		UserName:  m.UserName,
		Email:     m.Email,
		Role:      m.Role,
		AvatarURL: m.AvatarURL,
		Bio:       m.Bio,
	}
}

type UpdateProfileRequest struct {
	UserName *string `json:"user_name,omitempty" validate:"omitempty,min=3,max=50"`
	Bio      *string `json:"bio,omitempty" validate:"omitempty,max=500"`
}
