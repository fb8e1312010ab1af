package model

import "testing"

func TestCapabilitiesForRole(t *testing.T) {
	testCases := []struct {
		name string
		role UserRole
		want Capabilities
	}{
		{
			name: "master tem acesso total",
			role: RoleMaster,
			want: Capabilities{
				CanViewPainel:          true,
				CanViewMotoristas:      true,
				CanViewPainelMotorista: true,
				CanViewCadastro:        true,
				CanViewHistorico:       true,
				CanEditDrivers:         true,
				CanDeleteDrivers:       true,
				CanCallDrivers:         true,
				CanRemoveCalls:         true,
			},
		},
		{
			name: "adm sem painel e sem historico",
			role: RoleAdm,
			want: Capabilities{
				CanViewMotoristas:      true,
				CanViewPainelMotorista: true,
				CanViewCadastro:        true,
				CanEditDrivers:         true,
				CanDeleteDrivers:       true,
				CanCallDrivers:         true,
				CanRemoveCalls:         true,
			},
		},
		{
			name: "motorista apenas painel do motorista",
			role: RoleMotorista,
			want: Capabilities{CanViewPainelMotorista: true},
		},
		{
			name: "papel desconhecido cai no conjunto do motorista",
			role: UserRole("visitante"),
			want: Capabilities{CanViewPainelMotorista: true},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := CapabilitiesForRole(tc.role)
			if got != tc.want {
				t.Errorf("CapabilitiesForRole(%q) = %+v, want %+v", tc.role, got, tc.want)
			}
		})
	}
}
