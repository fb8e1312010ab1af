package dashboard

import "dockcall-backend/data-models/common"

// PanelStats is the aggregated dashboard snapshot.
type PanelStats struct {
	TotalDrivers          int `json:"totalDrivers" doc:"Registered drivers"`
	ActiveCalls           int `json:"activeCalls" doc:"Calls currently on the active panel"`
	FinalizedCallsCount   int `json:"finalizedCalls" doc:"Calls on the finalized panel"`
	DriversAwaitingStatus int `json:"driversAwaitingStatus" doc:"Drivers with service status aguardando"`
	InServiceOrProgress   int `json:"inServiceOrProgress" doc:"Drivers em servico or em progresso"`
	AwaitingCall          int `json:"awaitingCall" doc:"Online, available drivers without an active call"`
}

// PanelStatsResponse wraps the dashboard snapshot.
type PanelStatsResponse struct {
	Body *common.APIResponse[PanelStats]
}
