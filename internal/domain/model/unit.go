package model

type Unit string

const (
	UnitMilliliter Unit = "ml"
	UnitLiter      Unit = "l"
	UnitGram       Unit = "g"
	UnitKilogram   Unit = "kg"
	UnitNumbers    Unit = "nos"
	UnitPieces     Unit = "pcs"
)

func (u Unit) Valid() bool {
	switch u {
	case UnitMilliliter, UnitLiter, UnitGram, UnitKilogram, UnitNumbers, UnitPieces:
		return true
	}
	return false
}
