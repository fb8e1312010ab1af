package driver

import (
	"dockcall-backend/data-models/common"
	"dockcall-backend/model"
)

// RegisterDriverInput is the registration form payload.
type RegisterDriverInput struct {
	Body struct {
		ID                string `json:"id,omitempty" doc:"Optional driver id; reusing an existing id replaces that record"`
		FullName          string `json:"fullName" doc:"Driver full name"`
		Phone             string `json:"phone" doc:"Phone, 10-11 digits after stripping formatting"`
		VehiclePlate      string `json:"vehiclePlate" doc:"Vehicle plate"`
		Transporter       string `json:"transporter,omitempty" doc:"Transporter company"`
		Destination       string `json:"destination,omitempty" doc:"Default destination"`
		Dock              string `json:"dock,omitempty" doc:"Assigned dock"`
		Password          string `json:"password,omitempty" doc:"3-digit operational PIN"`
		Client            string `json:"client,omitempty" doc:"Client name"`
		ResponsibleSeller string `json:"responsibleSeller,omitempty" doc:"Responsible seller"`
	}
}

// UpdateDriverInput is the edit form payload.
type UpdateDriverInput struct {
	ID   string `path:"driverId" doc:"Driver id"`
	Body struct {
		FullName           string                   `json:"fullName" doc:"Driver full name"`
		Phone              string                   `json:"phone" doc:"Phone number"`
		VehiclePlate       string                   `json:"vehiclePlate" doc:"Vehicle plate"`
		Transporter        string                   `json:"transporter" doc:"Transporter company"`
		Destination        string                   `json:"destination,omitempty" doc:"Default destination"`
		Dock               string                   `json:"dock,omitempty" doc:"Assigned dock"`
		Password           string                   `json:"password,omitempty" doc:"3-digit operational PIN"`
		Client             string                   `json:"client,omitempty" doc:"Client name"`
		ResponsibleSeller  string                   `json:"responsibleSeller" doc:"Responsible seller"`
		AvailabilityStatus model.AvailabilityStatus `json:"availabilityStatus,omitempty" enum:"online,offline,busy" doc:"Availability status"`
		ServiceStatus      model.ServiceStatus      `json:"serviceStatus,omitempty" enum:"disponivel,em_servico,em_progresso,aguardando" doc:"Service status"`
	}
}

// DeleteDriverInput requires explicit confirmation before the cascade.
type DeleteDriverInput struct {
	ID      string `path:"driverId" doc:"Driver id"`
	Confirm bool   `query:"confirm" doc:"Must be true; removal cascades over the driver's calls"`
}

// ListDriversInput is the paginated driver listing query.
type ListDriversInput struct {
	common.BaseSearchPaginationInput
}

// DriverResponse wraps a single driver.
type DriverResponse struct {
	Body *common.APIResponse[model.Driver]
}

// DriverListData is the paginated driver listing payload.
type DriverListData struct {
	Drivers    []model.Driver        `json:"drivers"`
	Pagination common.PaginationInfo `json:"pagination"`
}

// DriverListResponse wraps the driver listing.
type DriverListResponse struct {
	Body *common.APIResponse[DriverListData]
}

// DeleteDriverResponse reports the cascade result.
type DeleteDriverResponse struct {
	Body *common.APIResponse[struct{}]
}
