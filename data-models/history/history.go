package history

import (
	"dockcall-backend/data-models/common"
	"dockcall-backend/model"
)

// ListActionHistoryInput filters the action history.
type ListActionHistoryInput struct {
	Role   string `query:"role" doc:"Filter by actor role (master, adm, motorista)"`
	Search string `query:"search" doc:"Case-insensitive keyword over action and details"`
}

// ActionHistoryData is the history listing payload, newest first.
type ActionHistoryData struct {
	Entries []model.ActionLogEntry `json:"entries"`
	Total   int                    `json:"total"`
}

// ActionHistoryResponse wraps the history listing.
type ActionHistoryResponse struct {
	Body *common.APIResponse[ActionHistoryData]
}
