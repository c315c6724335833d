package inventory

// Valores por defecto de la política de autorización.
const (
	DefaultAuthorizationThreshold int64 = 100
	DefaultPinMinLength                 = 4
	DefaultPinMaxLength                 = 8
)

// Policy regla de umbral para exigir PIN de supervisor en traslados.
type Policy struct {
	Threshold    int64
	PinMinLength int
	PinMaxLength int
}

// DefaultPolicy umbral 100 unidades, PIN de 4 a 8 dígitos.
func DefaultPolicy() Policy {
	return Policy{
		Threshold:    DefaultAuthorizationThreshold,
		PinMinLength: DefaultPinMinLength,
		PinMaxLength: DefaultPinMaxLength,
	}
}

// normalized aplica los valores por defecto a campos no configurados.
func (p Policy) normalized() Policy {
	if p.Threshold <= 0 {
		p.Threshold = DefaultAuthorizationThreshold
	}
	if p.PinMinLength <= 0 {
		p.PinMinLength = DefaultPinMinLength
	}
	if p.PinMaxLength < p.PinMinLength {
		p.PinMaxLength = p.PinMinLength
	}
	return p
}

// EffectiveThreshold umbral efectivo tras aplicar valores por defecto.
func (p Policy) EffectiveThreshold() int64 {
	return p.normalized().Threshold
}

// RequiresAuthorization true si la cantidad total alcanza o supera el umbral.
func (p Policy) RequiresAuthorization(totalQuantity int64) bool {
	return totalQuantity >= p.normalized().Threshold
}

// ValidPinFormat solo valida forma: dígitos y longitud. No compara credenciales.
func (p Policy) ValidPinFormat(pin string) bool {
	n := p.normalized()
	if len(pin) < n.PinMinLength || len(pin) > n.PinMaxLength {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
