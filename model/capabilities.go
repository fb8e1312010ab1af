package model

// Capabilities is the per-role permission set used by the panel. It is
// computed once from the role; there is no per-user grant storage.
type Capabilities struct {
	CanViewPainel          bool `json:"canViewPainel"`
	CanViewMotoristas      bool `json:"canViewMotoristas"`
	CanViewPainelMotorista bool `json:"canViewPainelMotorista"`
	CanViewCadastro        bool `json:"canViewCadastro"`
	CanViewHistorico       bool `json:"canViewHistorico"`
	CanEditDrivers         bool `json:"canEditDrivers"`
	CanDeleteDrivers       bool `json:"canDeleteDrivers"`
	CanCallDrivers         bool `json:"canCallDrivers"`
	CanRemoveCalls         bool `json:"canRemoveCalls"`
}

// CapabilitiesForRole maps a role to its capability set. Unknown roles get
// the motorista set, the most restricted one.
func CapabilitiesForRole(role UserRole) Capabilities {
	switch role {
	case RoleMaster:
		return Capabilities{
			CanViewPainel:          true,
			CanViewMotoristas:      true,
			CanViewPainelMotorista: true,
			CanViewCadastro:        true,
			CanViewHistorico:       true,
			CanEditDrivers:         true,
			CanDeleteDrivers:       true,
			CanCallDrivers:         true,
			CanRemoveCalls:         true,
		}
	case RoleAdm:
		return Capabilities{
			CanViewMotoristas:      true,
			CanViewPainelMotorista: true,
			CanViewCadastro:        true,
			CanEditDrivers:         true,
			CanDeleteDrivers:       true,
			CanCallDrivers:         true,
			CanRemoveCalls:         true,
		}
	default:
		return Capabilities{
			CanViewPainelMotorista: true,
		}
	}
}

// Session is the authenticated panel session injected by the auth
// middleware.
type Session struct {
	Role         UserRole     `json:"role"`
	Capabilities Capabilities `json:"capabilities"`
}
