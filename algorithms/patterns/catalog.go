// Package patterns recognizes named geometric step shapes in 4-lane
// note bitmasks. The catalog is a declarative table of column-letter
// templates; one generic matcher serves every entry.
package patterns

// PatternVariant identifies one catalog entry.
type PatternVariant int

const (
	AltStaircasesLeft PatternVariant = iota
	AltStaircasesRight
	AltStaircasesInvLeft
	AltStaircasesInvRight
	BoxLR
	BoxUD
	BoxCornerLD
	BoxCornerLU
	BoxCornerRD
	BoxCornerRU
	CandleLeft
	CandleRight
	CopterLeft
	CopterRight
	CopterInvLeft
	CopterInvRight
	DoritoRight
	DoritoLeft
	DoritoInvRight
	DoritoInvLeft
	DStaircaseLeft
	DStaircaseRight
	DStaircaseInvLeft
	DStaircaseInvRight
	HipBreakerLeft
	HipBreakerRight
	HipBreakerInvLeft
	HipBreakerInvRight
	LuchiLeftDU
	LuchiLeftUD
	LuchiRightUD
	LuchiRightDU
	SideswitchLeft
	SideswitchRight
	SideswitchGallopLeft
	SideswitchGallopRight
	SpiralLeft
	SpiralRight
	SpiralInvLeft
	SpiralInvRight
	StaircaseLeft
	StaircaseRight
	StaircaseInvLeft
	StaircaseInvRight
	SweepCandleLeft
	SweepCandleRight
	SweepCandleInvLeft
	SweepCandleInvRight
	SweepLeft
	SweepRight
	SweepInvLeft
	SweepInvRight
	TowerLR
	TowerUD
	TowerCornerLD
	TowerCornerLU
	TowerCornerRD
	TowerCornerRU
	TriangleLDL
	TriangleLUL
	TriangleRDR
	TriangleRUR
	TurboCandleLeft
	TurboCandleRight
	TurboCandleInvLeft
	TurboCandleInvRight

	PatternCount
)

// PatternCounts holds one counter per catalog variant, indexed by
// PatternVariant.
type PatternCounts [PatternCount]uint32

type patternDef struct {
	variant PatternVariant
	bits    []uint8
}

// catalogEntry binds a variant to its column-letter template. 'N' is a
// rest slot matching an empty row.
type catalogEntry struct {
	variant  PatternVariant
	template string
}

var catalog = []catalogEntry{
	// Staircases
	{StaircaseLeft, "RUDL"},
	{StaircaseRight, "LDUR"},
	{StaircaseInvLeft, "RDUL"},
	{StaircaseInvRight, "LUDR"},

	// Candles
	{CandleLeft, "ULD"},
	{CandleLeft, "DLU"},
	{CandleRight, "URD"},
	{CandleRight, "DRU"},

	// Triangles
	{TriangleRUR, "RUR"},
	{TriangleLUL, "LUL"},
	{TriangleLDL, "LDL"},
	{TriangleRDR, "RDR"},

	// Doritos
	{DoritoLeft, "LDUDL"},
	{DoritoRight, "RUDUR"},
	{DoritoInvLeft, "LUDUL"},
	{DoritoInvRight, "RDUDR"},

	// Sweeps
	{SweepLeft, "LDURUDL"},
	{SweepRight, "RUDLDUR"},
	{SweepInvLeft, "LUDRDUL"},
	{SweepInvRight, "RDULUDR"},

	// Boxes
	{BoxLR, "LRLR"},
	{BoxLR, "RLRL"},
	{BoxUD, "UDUD"},
	{BoxUD, "DUDU"},
	{BoxCornerLD, "LDLD"},
	{BoxCornerLD, "DLDL"},
	{BoxCornerLU, "LULU"},
	{BoxCornerLU, "ULUL"},
	{BoxCornerRD, "RDRD"},
	{BoxCornerRD, "DRDR"},
	{BoxCornerRU, "RURU"},
	{BoxCornerRU, "URUR"},

	// Towers
	{TowerLR, "LRLRL"},
	{TowerLR, "RLRLR"},
	{TowerUD, "UDUDU"},
	{TowerUD, "DUDUD"},
	{TowerCornerLD, "LDLDL"},
	{TowerCornerLD, "DLDLD"},
	{TowerCornerLU, "LULUL"},
	{TowerCornerLU, "ULULU"},
	{TowerCornerRD, "RDRDR"},
	{TowerCornerRD, "DRDRD"},
	{TowerCornerRU, "RURUR"},
	{TowerCornerRU, "URURU"},

	// Double staircases
	{DStaircaseLeft, "RDULRDUL"},
	{DStaircaseRight, "LUDRLUDR"},
	{DStaircaseInvLeft, "RDULRDUL"},
	{DStaircaseInvRight, "LDURLDUR"},

	// Alternating staircases
	{AltStaircasesLeft, "RDULRUDL"},
	{AltStaircasesRight, "LUDRLDUR"},
	{AltStaircasesInvLeft, "RUDLRDUL"},
	{AltStaircasesInvRight, "LDURLUDR"},

	// Luchi
	{LuchiLeftDU, "LDLUL"},
	{LuchiLeftUD, "LULDL"},
	{LuchiRightUD, "RURDR"},
	{LuchiRightDU, "RDRUR"},

	// Copters
	{CopterLeft, "LDURDULDUR"},
	{CopterRight, "RUDLUDRUDL"},
	{CopterInvLeft, "LUDRUDLUDR"},
	{CopterInvRight, "RDULDURDUL"},

	// Hip-breakers
	{HipBreakerLeft, "LDUDLUDUL"},
	{HipBreakerRight, "RUDURDUDR"},
	{HipBreakerInvLeft, "LUDULDUDL"},
	{HipBreakerInvRight, "RDUDRUDUR"},

	// Spirals
	{SpiralLeft, "LDURDR"},
	{SpiralRight, "RUDLUL"},
	{SpiralInvLeft, "LUDRUR"},
	{SpiralInvRight, "RDULDL"},

	// Turbo candles
	{TurboCandleLeft, "LDLUDRUR"},
	{TurboCandleRight, "RURDULDL"},
	{TurboCandleInvLeft, "LULDURDR"},
	{TurboCandleInvRight, "RDRUDLUL"},

	// Sweeping candles
	{SweepCandleLeft, "LDURDRUDL"},
	{SweepCandleRight, "RUDLULDUR"},
	{SweepCandleInvLeft, "LUDRURDUL"},
	{SweepCandleInvRight, "RDULDLUDR"},

	// Sideswitches
	{SideswitchLeft, "LURRD"},
	{SideswitchRight, "RDLLU"},
	{SideswitchGallopLeft, "LURNRD"},
	{SideswitchGallopRight, "RDLNLU"},
}

const (
	maskLeft  uint8 = 0b0001
	maskDown  uint8 = 0b0010
	maskUp    uint8 = 0b0100
	maskRight uint8 = 0b1000
)

func templateToBits(p string) []uint8 {
	out := make([]uint8, 0, len(p))
	for _, c := range p {
		var mask uint8
		switch c {
		case 'L':
			mask = maskLeft
		case 'D':
			mask = maskDown
		case 'U':
			mask = maskUp
		case 'R':
			mask = maskRight
		}
		out = append(out, mask)
	}
	return out
}

// defaultPatterns is the compiled catalog, ordered longest template
// first so the matcher prefers the most specific shape at each row.
// Catalog order breaks length ties.
var defaultPatterns = compileCatalog()

func compileCatalog() []patternDef {
	defs := make([]patternDef, len(catalog))
	for i, e := range catalog {
		defs[i] = patternDef{variant: e.variant, bits: templateToBits(e.template)}
	}
	// Stable insertion sort by descending length keeps catalog order
	// among equal-length templates.
	for i := 1; i < len(defs); i++ {
		for j := i; j > 0 && len(defs[j].bits) > len(defs[j-1].bits); j-- {
			defs[j], defs[j-1] = defs[j-1], defs[j]
		}
	}
	return defs
}
