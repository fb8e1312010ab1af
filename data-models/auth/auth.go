package auth

import (
	"time"

	"dockcall-backend/data-models/common"
	"dockcall-backend/model"
)

// LoginInput is the access-password login payload.
type LoginInput struct {
	Body struct {
		Password string `json:"password" doc:"Access password; determines the session role"`
	}
}

// LoginData carries the issued session.
type LoginData struct {
	Token        string             `json:"token" doc:"Bearer token for subsequent requests"`
	Role         model.UserRole     `json:"role" doc:"Resolved session role"`
	Capabilities model.Capabilities `json:"capabilities" doc:"Screen and action permissions for the role"`
	ExpiresAt    time.Time          `json:"expiresAt" doc:"Token expiry"`
}

// LoginResponse wraps a successful login.
type LoginResponse struct {
	Body *common.APIResponse[LoginData]
}

// LogoutResponse acknowledges a logout.
type LogoutResponse struct {
	Body *common.APIResponse[struct{}]
}
