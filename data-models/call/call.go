package call

import (
	"dockcall-backend/data-models/common"
	"dockcall-backend/model"
)

// PlaceCallInput summons a driver to a dock.
type PlaceCallInput struct {
	Body struct {
		DriverID    string `json:"driverId" doc:"Driver to call"`
		Message     string `json:"message" doc:"Call message shown to the driver"`
		Destination string `json:"destination,omitempty" doc:"Destination override; defaults to the driver's registered destination"`
		Dock        string `json:"dock,omitempty" doc:"Dock override; defaults to the driver's registered dock"`
	}
}

// AssignRunInput assigns a run to a driver.
type AssignRunInput struct {
	Body struct {
		DriverID    string `json:"driverId" doc:"Driver to assign"`
		Destination string `json:"destination" doc:"Run destination"`
		Dock        string `json:"dock,omitempty" doc:"Dock override"`
		Message     string `json:"message,omitempty" doc:"Optional message to the driver"`
	}
}

// CallIDInput addresses a call by id.
type CallIDInput struct {
	CallID string `path:"callId" doc:"Call id"`
}

// ListActiveCallsInput lists the active panel, optionally for one driver.
type ListActiveCallsInput struct {
	DriverID string `query:"driverId" doc:"Filter by driver id"`
}

// ListFinalizedCallsInput lists the finalized panel.
type ListFinalizedCallsInput struct {
	DriverID string `query:"driverId" doc:"Filter by driver id"`
}

// CallResponse wraps a single call.
type CallResponse struct {
	Body *common.APIResponse[model.Call]
}

// CallListData is the call listing payload.
type CallListData struct {
	Calls []model.Call `json:"calls"`
	Total int          `json:"total"`
}

// CallListResponse wraps a call listing.
type CallListResponse struct {
	Body *common.APIResponse[CallListData]
}

// RemoveCallResponse reports a panel removal.
type RemoveCallResponse struct {
	Body *common.APIResponse[struct{}]
}
