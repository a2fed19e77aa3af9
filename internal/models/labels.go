package models

// CreditBand is the credit-limit band stored in Grupo_Credito
type CreditBand string

const (
	CreditBandLow        CreditBand = "Bajo"
	CreditBandMediumLow  CreditBand = "Medio-Bajo"
	CreditBandMediumHigh CreditBand = "Medio-Alto"
	CreditBandHigh       CreditBand = "Alto"
	// CreditBandNone marks a limit outside every band; it is never defaulted.
	CreditBandNone CreditBand = ""
)

// String returns the string representation of CreditBand
func (b CreditBand) String() string {
	return string(b)
}

// IsValid checks if the band is one of the four enumerated bands
func (b CreditBand) IsValid() bool {
	switch b {
	case CreditBandLow, CreditBandMediumLow, CreditBandMediumHigh, CreditBandHigh:
		return true
	default:
		return false
	}
}

// IsLowTier reports whether the band is Low or Medium-Low, the population
// screened for suspicious overdraft.
func (b CreditBand) IsLowTier() bool {
	return b == CreditBandLow || b == CreditBandMediumLow
}

// CustomerType is the segment stored in tipo_cliente
type CustomerType string

const (
	CustomerNew   CustomerType = "cliente_nuevo"
	CustomerLoyal CustomerType = "cliente_fiel"
)

// String returns the string representation of CustomerType
func (c CustomerType) String() string {
	return string(c)
}

// IsValid checks if the customer type is valid
func (c CustomerType) IsValid() bool {
	return c == CustomerNew || c == CustomerLoyal
}

// Behavior is the inactivity classification stored in comportamiento_cliente
type Behavior string

const (
	BehaviorInactiveNoDebt   Behavior = "cliente_inactivo_sin_deuda"
	BehaviorInactiveWithDebt Behavior = "cliente_inactivo_con_deuda"
	BehaviorActive           Behavior = "cliente_activo"
	// BehaviorIrregular rows are removed before the table is returned.
	BehaviorIrregular Behavior = "cliente_irregular"
)

// String returns the string representation of Behavior
func (b Behavior) String() string {
	return string(b)
}

// IsValid checks if the behavior is one of the enumerated values
func (b Behavior) IsValid() bool {
	switch b {
	case BehaviorInactiveNoDebt, BehaviorInactiveWithDebt, BehaviorActive, BehaviorIrregular:
		return true
	default:
		return false
	}
}

// PaymentTier grades how often a payment pattern occurred in the window
type PaymentTier string

const (
	PaymentTierHigh   PaymentTier = "Alta"
	PaymentTierMedium PaymentTier = "Media"
	PaymentTierLow    PaymentTier = "Baja"
	PaymentTierNone   PaymentTier = "Nula"
)

// String returns the string representation of PaymentTier
func (p PaymentTier) String() string {
	return string(p)
}

// IsValid checks if the tier is valid
func (p PaymentTier) IsValid() bool {
	switch p {
	case PaymentTierHigh, PaymentTierMedium, PaymentTierLow, PaymentTierNone:
		return true
	default:
		return false
	}
}

// TierForCount maps a month count to its tier: >=6 High, 3-5 Medium, 1-2 Low, 0 None
func TierForCount(months int) PaymentTier {
	switch {
	case months >= 6:
		return PaymentTierHigh
	case months >= 3:
		return PaymentTierMedium
	case months >= 1:
		return PaymentTierLow
	default:
		return PaymentTierNone
	}
}

// DebtCategory is the quartile bucket stored in categoria_deuda
type DebtCategory string

const (
	DebtLow        DebtCategory = "Baja"
	DebtMediumLow  DebtCategory = "Media-baja"
	DebtMediumHigh DebtCategory = "Media-alta"
	DebtHigh       DebtCategory = "Alta"
)

// String returns the string representation of DebtCategory
func (d DebtCategory) String() string {
	return string(d)
}

// IsValid checks if the category is valid
func (d DebtCategory) IsValid() bool {
	switch d {
	case DebtLow, DebtMediumLow, DebtMediumHigh, DebtHigh:
		return true
	default:
		return false
	}
}
