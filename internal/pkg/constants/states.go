package constants

// Lead states. Transitions between them are not constrained.
const (
	LeadIngresado             = "INGRESADO"
	LeadEntregado             = "ENTREGADO"
	LeadEnEvaluacion          = "EN_EVALUACION"
	LeadObservado             = "OBSERVADO"
	LeadAprobado              = "APROBADO"
	LeadReservaPagada         = "RESERVA_PAGADA"
	LeadContratoFirmado       = "CONTRATO_FIRMADO"
	LeadContratoPagado        = "CONTRATO_PAGADO"
	LeadDepartamentoEntregado = "DEPARTAMENTO_ENTREGADO"
	LeadRechazado             = "RECHAZADO"
	LeadCancelado             = "CANCELADO"
)

var LeadStates = []string{
	LeadIngresado, LeadEntregado, LeadEnEvaluacion, LeadObservado, LeadAprobado,
	LeadReservaPagada, LeadContratoFirmado, LeadContratoPagado,
	LeadDepartamentoEntregado, LeadRechazado, LeadCancelado,
}

// TerminalLeadStates end a client's active lead; any other state blocks a new lead.
var TerminalLeadStates = []string{LeadRechazado, LeadCancelado, LeadDepartamentoEntregado}

// NonQualifyingLeadStates are excluded from a broker's tier volume.
var NonQualifyingLeadStates = []string{LeadRechazado, LeadCancelado}

func IsValidLeadState(s string) bool {
	return contains(LeadStates, s)
}

func IsTerminalLeadState(s string) bool {
	return contains(TerminalLeadStates, s)
}

// Unit states.
const (
	UnitDisponible = "DISPONIBLE"
	UnitReservada  = "RESERVADA"
	UnitVendida    = "VENDIDA"
)

var UnitStates = []string{UnitDisponible, UnitReservada, UnitVendida}

func IsValidUnitState(s string) bool {
	return contains(UnitStates, s)
}
