package variant

import "fmt"

// BlendRatio is how much of one parent's technique a merge integrates.
// The scale is closed and totally ordered; Next and Prev saturate at the ends.
type BlendRatio int

const (
	BlendZero BlendRatio = iota
	BlendQuarter
	BlendHalf
	BlendThreeQuarter
	BlendFull
)

var blendScale = [...]BlendRatio{BlendZero, BlendQuarter, BlendHalf, BlendThreeQuarter, BlendFull}

// AllBlendRatios returns the scale in ascending order.
func AllBlendRatios() []BlendRatio {
	return blendScale[:]
}

func (b BlendRatio) index() int {
	switch {
	case b < BlendZero:
		return 0
	case int(b) >= len(blendScale):
		return len(blendScale) - 1
	default:
		return int(b)
	}
}

// Next steps one position up the scale, staying at BlendFull.
func (b BlendRatio) Next() BlendRatio {
	i := b.index()
	if i+1 < len(blendScale) {
		return blendScale[i+1]
	}
	return blendScale[i]
}

// Prev steps one position down the scale, staying at BlendZero.
func (b BlendRatio) Prev() BlendRatio {
	i := b.index()
	if i > 0 {
		return blendScale[i-1]
	}
	return blendScale[i]
}

// Paired returns the value shown on the other side of a two-sided slider:
// the mirrored position on the scale. This is not 100 minus the percentage;
// the two only agree while the scale is symmetric around its midpoint.
func (b BlendRatio) Paired() BlendRatio {
	return blendScale[len(blendScale)-1-b.index()]
}

// Percent is the weight sent to the collaborator.
func (b BlendRatio) Percent() int {
	return b.index() * 100 / (len(blendScale) - 1)
}

// BlendFromPercent maps an exact percentage back onto the scale.
func BlendFromPercent(p int) (BlendRatio, bool) {
	for _, b := range blendScale {
		if b.Percent() == p {
			return b, true
		}
	}
	return BlendZero, false
}

func (b BlendRatio) String() string {
	return fmt.Sprintf("%d%%", b.Percent())
}

// Description phrases the ratio for merge prompts.
func (b BlendRatio) Description() string {
	switch b.index() {
	case 0:
		return "not directly used, but its insights inform the design"
	case 1:
		return "contributes a minor sub-component or enhancement"
	case 2:
		return "equal architectural weight in a true hybrid approach"
	case 3:
		return "serves as the primary architecture"
	default:
		return "fully implemented as the core approach"
	}
}
